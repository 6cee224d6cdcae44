// Package session implements the login, refresh and logout state
// transitions on top of the credential store, the token issuer and the
// lockout guard.
package session

import (
	"errors"
	"strings"
	"time"

	"kanban/internal/auth"
	"kanban/internal/database"
	"kanban/internal/platform/user"
)

var (
	ErrPolicyViolation    = errors.New("password does not meet the minimum policy")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("inactive user")
	ErrMissingToken       = errors.New("refresh token required")
	ErrInvalidToken       = errors.New("invalid refresh token")
)

// LockedError reports a temporarily locked (email, origin) pair.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return "temporarily locked due to failed login attempts"
}

// UserStore is the credential store consulted by the session flows.
type UserStore interface {
	Create(u *database.User) error
	GetByID(userID uint) (*database.User, error)
	GetByEmail(email string) (*database.User, error)
	SetRefreshTokenID(u *database.User, jti string) error
	ClearRefreshTokenID(u *database.User) error
}

// Tokens is a freshly minted access/refresh pair.
type Tokens struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type Service struct {
	users             UserStore
	issuer            *auth.Issuer
	guard             auth.Guard
	passwordMinLength int
}

func NewService(users UserStore, issuer *auth.Issuer, guard auth.Guard, passwordMinLength int) *Service {
	return &Service{
		users:             users,
		issuer:            issuer,
		guard:             guard,
		passwordMinLength: passwordMinLength,
	}
}

// Register creates a new active, unverified user with a hashed password.
func (s *Service) Register(email, password string) (*database.User, error) {
	if !auth.PasswordPolicyOK(password, s.passwordMinLength) {
		return nil, ErrPolicyViolation
	}

	email = strings.ToLower(email)
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &database.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   false,
	}
	if err := s.users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies the credentials and mints a token pair, persisting the
// refresh token's jti on the user record. A missing user and a wrong
// password fail identically so callers cannot probe for accounts.
func (s *Service) Login(email, password, origin string) (*database.User, *Tokens, error) {
	email = strings.ToLower(email)

	if until, locked := s.guard.IsLocked(email, origin); locked {
		return nil, nil, &LockedError{Until: until}
	}

	u, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.guard.RecordFailure(email, origin)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !auth.VerifyPassword(password, u.PasswordHash) {
		s.guard.RecordFailure(email, origin)
		return nil, nil, ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, nil, ErrInactiveUser
	}

	s.guard.Clear(email, origin)

	tokens, jti, err := s.mintPair(u.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.users.SetRefreshTokenID(u, jti); err != nil {
		return nil, nil, err
	}
	return u, tokens, nil
}

// Refresh validates the presented refresh token against the stored jti
// and rotates it. A token that was rotated out is rejected even while
// cryptographically valid and unexpired.
func (s *Service) Refresh(refreshToken string) (*Tokens, error) {
	if refreshToken == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.issuer.Decode(refreshToken, auth.ScopeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive || u.RefreshTokenID == nil || *u.RefreshTokenID != claims.ID {
		return nil, ErrInvalidToken
	}

	tokens, jti, err := s.mintPair(u.ID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshTokenID(u, jti); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Logout clears the stored refresh jti. Best-effort: decode and lookup
// failures are absorbed, logout never fails visibly.
func (s *Service) Logout(refreshToken string) {
	if refreshToken == "" {
		return
	}

	claims, err := s.issuer.Decode(refreshToken, auth.ScopeRefresh)
	if err != nil {
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		return
	}

	u, err := s.users.GetByID(userID)
	if err != nil {
		return
	}
	_ = s.users.ClearRefreshTokenID(u)
}

func (s *Service) mintPair(userID uint) (*Tokens, string, error) {
	access, _, err := s.issuer.CreateAccessToken(userID)
	if err != nil {
		return nil, "", err
	}
	refresh, jti, expiresAt, err := s.issuer.CreateRefreshToken(userID)
	if err != nil {
		return nil, "", err
	}

	tokens := &Tokens{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: expiresAt,
	}
	return tokens, jti, nil
}

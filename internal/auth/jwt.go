package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ScopeAccess  = "access"
	ScopeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the signed token payload. The jti (RegisteredClaims.ID)
// is unique per mint and is what the session layer tracks for refresh
// token rotation.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// UserID parses the token subject.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// Issuer mints and validates access and refresh tokens signed with a
// single shared secret.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (i *Issuer) mint(userID uint, scope string, ttl time.Duration) (string, string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	jti := uuid.NewString()

	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, jti, expiresAt, nil
}

// CreateAccessToken returns a signed access token and its jti.
func (i *Issuer) CreateAccessToken(userID uint) (string, string, error) {
	token, jti, _, err := i.mint(userID, ScopeAccess, i.accessTTL)
	return token, jti, err
}

// CreateRefreshToken returns a signed refresh token, its jti and its expiry.
func (i *Issuer) CreateRefreshToken(userID uint) (string, string, time.Time, error) {
	return i.mint(userID, ScopeRefresh, i.refreshTTL)
}

// Decode verifies the token signature, expiry and scope. Any failure is
// reported as ErrInvalidToken.
func (i *Issuer) Decode(token, scope string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Scope != scope {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

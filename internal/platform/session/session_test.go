package session

import (
	"errors"
	"testing"
	"time"

	"kanban/internal/auth"
	"kanban/internal/database"
	"kanban/internal/platform/user"
)

type fakeStore struct {
	users  map[uint]*database.User
	nextID uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[uint]*database.User)}
}

func (f *fakeStore) Create(u *database.User) error {
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = u
	return nil
}

func (f *fakeStore) GetByID(userID uint) (*database.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) GetByEmail(email string) (*database.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeStore) SetRefreshTokenID(u *database.User, jti string) error {
	u.RefreshTokenID = &jti
	return nil
}

func (f *fakeStore) ClearRefreshTokenID(u *database.User) error {
	u.RefreshTokenID = nil
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *auth.Issuer, *auth.MemoryGuard) {
	t.Helper()

	store := newFakeStore()
	issuer := auth.NewIssuer("test-secret", 15*time.Minute, 7*24*time.Hour)
	guard := auth.NewMemoryGuard(3, 15*time.Minute)

	return NewService(store, issuer, guard, 8), store, issuer, guard
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	u, err := svc.Register("User@Example.com", "Valid123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.Email != "user@example.com" {
		t.Errorf("email = %q; want normalized lowercase", u.Email)
	}
	if u.PasswordHash == "Valid123" || u.PasswordHash == "" {
		t.Error("expected password to be stored as an opaque hash")
	}
	if !u.IsActive || u.IsVerified {
		t.Errorf("flags = active %v, verified %v; want true, false", u.IsActive, u.IsVerified)
	}

	_, tokens, err := svc.Login("user@example.com", "Valid123", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("expected both tokens to be minted")
	}
}

func TestRegisterPolicyViolation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	for _, password := range []string{"short1", "alllowercase1", "NoDigitsHere", "Has Space1"} {
		if _, err := svc.Register("user@example.com", password); !errors.Is(err, ErrPolicyViolation) {
			t.Errorf("Register with %q: err = %v; want ErrPolicyViolation", password, err)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Register("user@example.com", "Valid123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register("USER@example.com", "Valid123"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v; want ErrEmailTaken", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Register("user@example.com", "Valid123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, _, missingErr := svc.Login("nobody@example.com", "Valid123", "10.0.0.1")
	_, _, wrongErr := svc.Login("user@example.com", "Wrong123", "10.0.0.1")

	// Unknown user and wrong password must be indistinguishable.
	if !errors.Is(missingErr, ErrInvalidCredentials) || !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Errorf("errs = %v, %v; want ErrInvalidCredentials for both", missingErr, wrongErr)
	}
}

func TestLoginLockout(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Register("user@example.com", "Valid123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, _, err := svc.Login("user@example.com", "Wrong123", "10.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: err = %v; want ErrInvalidCredentials", i+1, err)
		}
	}

	// Below the threshold the correct password still works.
	if _, _, err := svc.Login("user@example.com", "Valid123", "10.0.0.1"); err != nil {
		t.Fatalf("Login below threshold failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		svc.Login("user@example.com", "Wrong123", "10.0.0.1")
	}

	var locked *LockedError
	_, _, err := svc.Login("user@example.com", "Valid123", "10.0.0.1")
	if !errors.As(err, &locked) {
		t.Fatalf("err = %v; want LockedError even with the correct password", err)
	}
	if !locked.Until.After(time.Now()) {
		t.Errorf("lock expiry %v not in the future", locked.Until)
	}

	// The lock is scoped to the origin.
	if _, _, err := svc.Login("user@example.com", "Valid123", "10.0.0.2"); err != nil {
		t.Errorf("Login from another origin failed: %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	svc, store, _, _ := newTestService(t)

	u, err := svc.Register("user@example.com", "Valid123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	store.users[u.ID].IsActive = false

	if _, _, err := svc.Login("user@example.com", "Valid123", "10.0.0.1"); !errors.Is(err, ErrInactiveUser) {
		t.Errorf("err = %v; want ErrInactiveUser", err)
	}
}

func TestLoginPersistsRefreshTokenID(t *testing.T) {
	svc, store, issuer, _ := newTestService(t)

	u, err := svc.Register("user@example.com", "Valid123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, tokens, err := svc.Login("user@example.com", "Valid123", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := issuer.Decode(tokens.RefreshToken, auth.ScopeRefresh)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	stored := store.users[u.ID].RefreshTokenID
	if stored == nil || *stored != claims.ID {
		t.Errorf("stored jti = %v; want %q", stored, claims.ID)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Register("user@example.com", "Valid123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, first, err := svc.Login("user@example.com", "Valid123", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	second, err := svc.Refresh(first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("expected rotation to mint a distinct refresh token")
	}

	// The consumed token is permanently unusable, even though it is
	// still cryptographically valid and unexpired.
	if _, err := svc.Refresh(first.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("replay err = %v; want ErrInvalidToken", err)
	}

	// The rotated-in token works exactly once.
	if _, err := svc.Refresh(second.RefreshToken); err != nil {
		t.Fatalf("Refresh with rotated token failed: %v", err)
	}
	if _, err := svc.Refresh(second.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("second replay err = %v; want ErrInvalidToken", err)
	}
}

func TestLoginInvalidatesPreviousRefreshToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Register("user@example.com", "Valid123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, first, err := svc.Login("user@example.com", "Valid123", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, _, err := svc.Login("user@example.com", "Valid123", "10.0.0.1"); err != nil {
		t.Fatalf("second Login failed: %v", err)
	}

	if _, err := svc.Refresh(first.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v; want ErrInvalidToken for superseded token", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, issuer, _ := newTestService(t)

	u, err := svc.Register("user@example.com", "Valid123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	access, _, err := issuer.CreateAccessToken(u.ID)
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}

	if _, err := svc.Refresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v; want ErrInvalidToken for access-scoped credential", err)
	}
}

func TestRefreshMissingToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Refresh(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("err = %v; want ErrMissingToken", err)
	}
}

func TestRefreshDeletedOrInactiveUser(t *testing.T) {
	svc, store, _, _ := newTestService(t)

	u, err := svc.Register("user@example.com", "Valid123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, tokens, err := svc.Login("user@example.com", "Valid123", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	store.users[u.ID].IsActive = false
	if _, err := svc.Refresh(tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("inactive err = %v; want ErrInvalidToken", err)
	}

	delete(store.users, u.ID)
	if _, err := svc.Refresh(tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("deleted err = %v; want ErrInvalidToken", err)
	}
}

func TestLogout(t *testing.T) {
	svc, store, _, _ := newTestService(t)

	u, err := svc.Register("user@example.com", "Valid123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, tokens, err := svc.Login("user@example.com", "Valid123", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	svc.Logout(tokens.RefreshToken)

	if store.users[u.ID].RefreshTokenID != nil {
		t.Error("expected stored refresh jti to be cleared")
	}
	if _, err := svc.Refresh(tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v; want ErrInvalidToken after logout", err)
	}
}

func TestLogoutBestEffort(t *testing.T) {
	svc, store, _, _ := newTestService(t)

	u, err := svc.Register("user@example.com", "Valid123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, tokens, err := svc.Login("user@example.com", "Valid123", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	delete(store.users, u.ID)

	// None of these may panic or surface an error.
	svc.Logout("")
	svc.Logout("garbage")
	svc.Logout(tokens.RefreshToken)
}

package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of the password. The salt is
// embedded in the returned value.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash.
// A malformed hash verifies as false.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordPolicyOK checks the minimum password policy: length, no
// whitespace, at least one uppercase letter, one lowercase letter and
// one digit.
func PasswordPolicyOK(password string, minLength int) bool {
	if len(password) < minLength {
		return false
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return false
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

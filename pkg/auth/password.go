package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordChecker compares a candidate password against a stored credential.
// Stored bcrypt hashes are verified with bcrypt. Anything else is a legacy
// plaintext credential and only matches while AllowPlaintext is set.
type PasswordChecker struct {
	AllowPlaintext bool
}

func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

func (p PasswordChecker) Check(stored, candidate string) bool {
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	if !p.AllowPlaintext {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// HashPassword produces a bcrypt hash suitable for seeding the store.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

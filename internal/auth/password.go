// Package auth implements the credential store and token issuer: bcrypt
// password hashing, JWT issuance and verification, and the per-account
// failed login counter.
package auth

import (
	"fmt"

	"github.com/atinyakov/sellharbor/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is bcrypt's input ceiling. Longer secrets are rejected,
// never truncated.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned for secrets over MaxPasswordBytes.
var ErrPasswordTooLong = common.NewInvalidInput("Password too long")

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	if len(password) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies account passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// BcryptHasher hashes with bcrypt at the configured cost
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{Cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	return string(bytes), err
}

func (h *BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var errPasswordLength = errors.New("password length")

// checkPassword enforces the password policy for new credentials
func checkPassword(password string) error {
	if len(strings.TrimSpace(password)) < 8 {
		return invalid("password", errPasswordLength, "Kata sandi minimal 8 karakter")
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return invalid("password", errPasswordLength, "Kata sandi terlalu panjang")
	}
	return nil
}

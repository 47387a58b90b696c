package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when there is no stored hash, so a missing
// account costs the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	h, err := UnusablePasswordHash()
	if err != nil {
		return ""
	}
	return h
})

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyPassword is CheckPassword for sign-in paths. An empty hash still runs
// a full bcrypt comparison and then fails.
func VerifyPassword(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash()), []byte(password))
		return false
	}
	return CheckPassword(hash, password)
}

// UnusablePasswordHash hashes 32 random bytes that are never disclosed, so the
// account cannot sign in with a password.
func UnusablePasswordHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate placeholder password: %w", err)
	}
	// bcrypt only reads 72 bytes; 64 hex chars stay under that.
	return HashPassword(hex.EncodeToString(buf))
}

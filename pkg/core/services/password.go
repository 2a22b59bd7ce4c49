package services

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Passwords holds the per-action secrets checked on every mutating request.
// Either value may be plaintext or a bcrypt hash.
type Passwords struct {
	Admin string // delete, reorder, export
	Edit  string // update
}

// MatchPassword compares a submitted password with the configured one.
// An empty configured or submitted password never matches.
func MatchPassword(configured, given string) bool {
	if configured == "" || given == "" {
		return false
	}
	if isBcryptHash(configured) {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

package auth

import (
	stderrors "errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes password with bcrypt at the given cost. A cost outside
// bcrypt's range falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword returns errors.ErrInvalidCredentials when password does not
// match hash.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if stderrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return errors.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("check password: %w", err)
	}
	return nil
}

// ScopeKey derives the storage key for a username by keeping only letters,
// digits, underscores and hyphens.
func ScopeKey(username string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			return r
		}
		return -1
	}, username)
}

// ValidUsername reports whether username is non-empty and maps to itself
// under ScopeKey, so no two accounts can share a collection.
func ValidUsername(username string) bool {
	return username != "" && ScopeKey(username) == username && username != models.GuestScopeKey
}

// UserScope returns the persistent scope for an authenticated user.
func UserScope(username string) models.Scope {
	return models.Scope{Key: ScopeKey(username), Username: username, Persistent: true}
}

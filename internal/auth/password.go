package auth

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is counted in characters, not bytes.
	MinPasswordLength = 4
	// HashCost is the bcrypt work factor used for every stored password.
	HashCost = 10
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

var (
	lowerClass = regexp.MustCompile(`[a-z]`)
	upperClass = regexp.MustCompile(`[A-Z]`)
	digitClass = regexp.MustCompile(`[0-9]`)
)

// ValidatePasswordPolicy reports whether candidate has at least one lowercase
// letter, one uppercase letter, one digit and MinPasswordLength characters.
func ValidatePasswordPolicy(candidate string) bool {
	if utf8.RuneCountInString(candidate) < MinPasswordLength {
		return false
	}
	return lowerClass.MatchString(candidate) &&
		upperClass.MatchString(candidate) &&
		digitClass.MatchString(candidate)
}

// HashPassword produces a salted bcrypt hash at HashCost.
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches the stored bcrypt hash.
// A malformed hash never matches.
func VerifyPassword(plaintext, hash string) bool {
	if plaintext == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// DummyHash is a bcrypt hash at HashCost that no password is expected to
// match. Comparing against it when no account exists makes a lookup miss
// cost the same as a wrong password.
var DummyHash = sync.OnceValue(func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte("account-unknown-user-placeholder"), HashCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy password hash: %v", err))
	}
	return string(hash)
})

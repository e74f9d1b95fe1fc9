package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/account-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrLimitReached indicates a counter is already at its ceiling.
var ErrLimitReached = errors.New("limit reached")

// UserStore captures persistence operations needed by handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64, email string) error
}

// CodeStore keeps one pending verification code per email.
type CodeStore interface {
	// SaveCode replaces any existing code for the email and resets attempts.
	SaveCode(ctx context.Context, code models.VerificationCode) error
	GetCode(ctx context.Context, email string) (models.VerificationCode, error)
	// IncrementAttempts atomically counts one attempt while fewer than limit
	// have been made and returns the new count. At the limit it changes
	// nothing and returns ErrLimitReached.
	IncrementAttempts(ctx context.Context, email string, limit int) (int, error)
	// ResetAttempts sets the attempt count back to zero.
	ResetAttempts(ctx context.Context, email string) error
	DeleteCode(ctx context.Context, email string) error
	DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error)
}

// RevocationStore records session token ids that must no longer be accepted.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	DeleteExpiredRevocations(ctx context.Context, now time.Time) (int64, error)
}

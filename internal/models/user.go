package models

import "time"

// User captures application-facing fields for an account.
type User struct {
	ID           int64     `json:"userId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Point        int64     `json:"point"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// VerificationCode is the stored form of a signup email code. Only the hash
// of the code is kept.
type VerificationCode struct {
	Email     string
	CodeHash  string
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpiredAt reports whether the code is no longer usable at t.
func (c VerificationCode) IsExpiredAt(t time.Time) bool {
	return !t.Before(c.ExpiresAt)
}

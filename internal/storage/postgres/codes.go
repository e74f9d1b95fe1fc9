package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/account-be/internal/models"
	"github.com/hongminglow/account-be/internal/storage"
)

// SaveCode upserts the pending code for an email and resets its attempts.
func (s *Store) SaveCode(ctx context.Context, code models.VerificationCode) error {
	const query = `
		INSERT INTO verification_codes (email, code_hash, attempts, expires_at, created_at)
		VALUES ($1, $2, 0, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET code_hash = EXCLUDED.code_hash, attempts = 0, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at;
	`
	if _, err := s.pool.Exec(ctx, query, code.Email, code.CodeHash, code.ExpiresAt, code.CreatedAt); err != nil {
		return fmt.Errorf("save verification code: %w", err)
	}
	return nil
}

// GetCode returns the pending code for an email.
func (s *Store) GetCode(ctx context.Context, email string) (models.VerificationCode, error) {
	const query = `
		SELECT email, code_hash, attempts, expires_at, created_at
		FROM verification_codes
		WHERE email = $1;
	`
	var code models.VerificationCode
	err := s.pool.QueryRow(ctx, query, email).Scan(&code.Email, &code.CodeHash, &code.Attempts, &code.ExpiresAt, &code.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VerificationCode{}, storage.ErrNotFound
		}
		return models.VerificationCode{}, fmt.Errorf("get verification code: %w", err)
	}
	return code, nil
}

// IncrementAttempts counts a guess. The row lock taken by UPDATE serializes
// concurrent guesses so no more than limit are ever counted.
func (s *Store) IncrementAttempts(ctx context.Context, email string, limit int) (int, error) {
	const query = `
		UPDATE verification_codes SET attempts = attempts + 1
		WHERE email = $1 AND attempts < $2
		RETURNING attempts;
	`
	var attempts int
	err := s.pool.QueryRow(ctx, query, email, limit).Scan(&attempts)
	if err == nil {
		return attempts, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("increment verification attempts: %w", err)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM verification_codes WHERE email = $1);`, email).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check verification code: %w", err)
	}
	if !exists {
		return 0, storage.ErrNotFound
	}
	return limit, storage.ErrLimitReached
}

// ResetAttempts clears the guess count for an email.
func (s *Store) ResetAttempts(ctx context.Context, email string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE verification_codes SET attempts = 0 WHERE email = $1;`, email)
	if err != nil {
		return fmt.Errorf("reset verification attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteCode removes the pending code for an email.
func (s *Store) DeleteCode(ctx context.Context, email string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM verification_codes WHERE email = $1;`, email)
	if err != nil {
		return fmt.Errorf("delete verification code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteExpiredCodes purges codes that expired at or before now.
func (s *Store) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM verification_codes WHERE expires_at <= $1;`, now)
	if err != nil {
		return 0, fmt.Errorf("purge verification codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

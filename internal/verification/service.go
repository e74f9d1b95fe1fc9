// Package verification issues and checks the numeric codes mailed to an
// address before an account may be created for it.
package verification

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/hongminglow/account-be/internal/logger"
	"github.com/hongminglow/account-be/internal/models"
	"github.com/hongminglow/account-be/internal/storage"
)

const (
	// CodeLength is the number of decimal digits in a code.
	CodeLength = 6
	// MaxAttempts is how many guesses are compared against one code.
	MaxAttempts = 5
)

var (
	ErrCodeNotFound    = errors.New("verification code not found")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrCodeMismatch    = errors.New("verification code mismatch")
)

// Sender delivers a code to an email address.
type Sender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// Service stores hashed codes with a TTL and dispatches the plaintext by mail.
type Service struct {
	store  storage.CodeStore
	sender Sender
	ttl    time.Duration
	now    func() time.Time
	logger *logger.Logger
}

// NewService constructs the verification service.
func NewService(store storage.CodeStore, sender Sender, ttl time.Duration, logger *logger.Logger) *Service {
	return &Service{store: store, sender: sender, ttl: ttl, now: time.Now, logger: logger}
}

// Send generates a fresh code for email, replacing any pending one, and mails it.
func (s *Service) Send(ctx context.Context, email string) error {
	code, err := GenerateCode()
	if err != nil {
		return err
	}

	now := s.now()
	record := models.VerificationCode{
		Email:     email,
		CodeHash:  HashCode(code),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.store.SaveCode(ctx, record); err != nil {
		return fmt.Errorf("save verification code: %w", err)
	}

	if err := s.sender.SendVerificationCode(ctx, email, code); err != nil {
		if delErr := s.store.DeleteCode(ctx, email); delErr != nil && !errors.Is(delErr, storage.ErrNotFound) {
			s.logger.Warn("Verification: failed to drop undelivered code", "email", email, "error", delErr.Error())
		}
		return fmt.Errorf("send verification code: %w", err)
	}

	s.logger.Info("Verification: code sent", "email", email, "expires_at", record.ExpiresAt)
	return nil
}

// Verify checks input against the pending code for email. Every guess is
// counted before it is compared, so at most MaxAttempts guesses are ever
// evaluated for one code. A correct guess clears the count.
func (s *Service) Verify(ctx context.Context, email, input string) error {
	record, err := s.store.GetCode(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrCodeNotFound
	}
	if err != nil {
		return fmt.Errorf("get verification code: %w", err)
	}

	if record.IsExpiredAt(s.now()) {
		if err := s.store.DeleteCode(ctx, email); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Verification: failed to drop expired code", "email", email, "error", err.Error())
		}
		return ErrCodeExpired
	}

	attempts, err := s.store.IncrementAttempts(ctx, email, MaxAttempts)
	switch {
	case errors.Is(err, storage.ErrLimitReached):
		return ErrTooManyAttempts
	case errors.Is(err, storage.ErrNotFound):
		return ErrCodeNotFound
	case err != nil:
		return fmt.Errorf("record verification attempt: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(HashCode(input)), []byte(record.CodeHash)) != 1 {
		s.logger.Info("Verification: code mismatch", "email", email, "attempts", attempts)
		return ErrCodeMismatch
	}

	if err := s.store.ResetAttempts(ctx, email); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("Verification: failed to reset attempts", "email", email, "error", err.Error())
	}
	return nil
}

// Consume removes the code once it has served its purpose.
func (s *Service) Consume(ctx context.Context, email string) error {
	if err := s.store.DeleteCode(ctx, email); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("consume verification code: %w", err)
	}
	return nil
}

// GenerateCode returns a uniformly random CodeLength-digit string.
func GenerateCode() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(CodeLength), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// HashCode is the stored form of a code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

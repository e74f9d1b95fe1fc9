package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/account-be/internal/models"
	"github.com/hongminglow/account-be/internal/storage"
)

var userColumns = []string{"id", "email", "password_hash", "point", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return New(mock), mock
}

func TestStore_CreateUser(t *testing.T) {
	now := time.Now().UTC()
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("a@b.com", "hash", int64(100)).
					WillReturnRows(pgxmock.NewRows(userColumns).AddRow(int64(1), "a@b.com", "hash", int64(100), now, now))
			},
		},
		{
			name: "duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("a@b.com", "hash", int64(100)).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: storage.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tt.setupMock(mock)

			got, err := s.CreateUser(context.Background(), models.User{Email: "a@b.com", PasswordHash: "hash", Point: 100})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), got.ID)
			assert.Equal(t, int64(100), got.Point)
			assert.Equal(t, now, got.CreatedAt)
		})
	}
}

func TestStore_CreateUser_DBError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("a@b.com", "hash", int64(0)).
		WillReturnError(errors.New("connection refused"))

	_, err := s.CreateUser(context.Background(), models.User{Email: "a@b.com", PasswordHash: "hash"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStore_FindUser(t *testing.T) {
	now := time.Now().UTC()

	t.Run("by email", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
			WithArgs("a@b.com").
			WillReturnRows(pgxmock.NewRows(userColumns).AddRow(int64(2), "a@b.com", "hash", int64(0), now, now))

		got, err := s.FindByEmail(context.Background(), "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.ID)
		assert.Equal(t, "hash", got.PasswordHash)
	})

	t.Run("by id not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
			WithArgs(int64(9)).
			WillReturnError(pgx.ErrNoRows)

		_, err := s.FindByID(context.Background(), 9)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestStore_UpdatePassword(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE users SET password_hash`).
			WithArgs(int64(1), "new-hash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, s.UpdatePassword(context.Background(), 1, "new-hash"))
	})

	t.Run("missing user", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE users SET password_hash`).
			WithArgs(int64(1), "new-hash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, s.UpdatePassword(context.Background(), 1, "new-hash"), storage.ErrNotFound)
	})
}

func TestStore_DeleteUser(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`DELETE FROM users WHERE id = \$1 AND email = \$2`).
			WithArgs(int64(1), "a@b.com").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, s.DeleteUser(context.Background(), 1, "a@b.com"))
	})

	t.Run("email changed underneath", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`DELETE FROM users`).
			WithArgs(int64(1), "a@b.com").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, s.DeleteUser(context.Background(), 1, "a@b.com"), storage.ErrNotFound)
	})
}

func TestStore_Codes(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	code := models.VerificationCode{Email: "a@b.com", CodeHash: "h", ExpiresAt: now.Add(time.Minute), CreatedAt: now}

	t.Run("save", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`INSERT INTO verification_codes`).
			WithArgs("a@b.com", "h", code.ExpiresAt, code.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, s.SaveCode(ctx, code))
	})

	t.Run("get", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`FROM verification_codes`).
			WithArgs("a@b.com").
			WillReturnRows(pgxmock.NewRows([]string{"email", "code_hash", "attempts", "expires_at", "created_at"}).
				AddRow("a@b.com", "h", 2, code.ExpiresAt, code.CreatedAt))

		got, err := s.GetCode(ctx, "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, 2, got.Attempts)
		assert.Equal(t, "h", got.CodeHash)
	})

	t.Run("get missing", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`FROM verification_codes`).
			WithArgs("x@b.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := s.GetCode(ctx, "x@b.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("increment", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`UPDATE verification_codes SET attempts = attempts \+ 1`).
			WithArgs("a@b.com", 5).
			WillReturnRows(pgxmock.NewRows([]string{"attempts"}).AddRow(3))

		n, err := s.IncrementAttempts(ctx, "a@b.com", 5)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("increment at limit", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`UPDATE verification_codes SET attempts = attempts \+ 1`).
			WithArgs("a@b.com", 5).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("a@b.com").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		n, err := s.IncrementAttempts(ctx, "a@b.com", 5)
		assert.ErrorIs(t, err, storage.ErrLimitReached)
		assert.Equal(t, 5, n)
	})

	t.Run("increment missing", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`UPDATE verification_codes SET attempts = attempts \+ 1`).
			WithArgs("x@b.com", 5).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("x@b.com").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := s.IncrementAttempts(ctx, "x@b.com", 5)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("reset", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE verification_codes SET attempts = 0`).
			WithArgs("a@b.com").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, s.ResetAttempts(ctx, "a@b.com"))
	})

	t.Run("delete missing", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`DELETE FROM verification_codes WHERE email`).
			WithArgs("a@b.com").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, s.DeleteCode(ctx, "a@b.com"), storage.ErrNotFound)
	})

	t.Run("purge", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`DELETE FROM verification_codes WHERE expires_at`).
			WithArgs(now).
			WillReturnResult(pgxmock.NewResult("DELETE", 4))

		n, err := s.DeleteExpiredCodes(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
}

func TestStore_Revocations(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).UTC()

	t.Run("revoke", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`INSERT INTO revoked_tokens`).
			WithArgs("jti-1", exp).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, s.Revoke(ctx, "jti-1", exp))
	})

	t.Run("is revoked", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("jti-1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		revoked, err := s.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("lookup error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("jti-1").
			WillReturnError(errors.New("timeout"))

		_, err := s.IsRevoked(ctx, "jti-1")
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestStore_Ping(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectPing()

	assert.NoError(t, s.Ping(context.Background()))
}

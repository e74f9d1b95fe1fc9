package verification

import (
	"context"
	"sync"
	"time"

	"github.com/hongminglow/account-be/internal/models"
	"github.com/hongminglow/account-be/internal/storage"
)

var _ storage.CodeStore = (*MemoryStore)(nil)

// MemoryStore is a process-local CodeStore. A background goroutine drops
// expired codes every purge interval until Close is called.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]models.VerificationCode
	now   func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewMemoryStore starts a store purging every interval.
func NewMemoryStore(interval time.Duration) *MemoryStore {
	m := &MemoryStore{
		codes: make(map[string]models.VerificationCode),
		now:   time.Now,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go m.janitor(interval)
	return m
}

func (m *MemoryStore) janitor(interval time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			_, _ = m.DeleteExpiredCodes(context.Background(), m.now())
		}
	}
}

// Close stops the purge goroutine and waits for it to exit.
func (m *MemoryStore) Close() {
	m.once.Do(func() { close(m.stop) })
	<-m.done
}

func (m *MemoryStore) SaveCode(_ context.Context, code models.VerificationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	code.Attempts = 0
	m.codes[code.Email] = code
	return nil
}

func (m *MemoryStore) GetCode(_ context.Context, email string) (models.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[email]
	if !ok {
		return models.VerificationCode{}, storage.ErrNotFound
	}
	return code, nil
}

func (m *MemoryStore) IncrementAttempts(_ context.Context, email string, limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[email]
	if !ok {
		return 0, storage.ErrNotFound
	}
	if code.Attempts >= limit {
		return code.Attempts, storage.ErrLimitReached
	}
	code.Attempts++
	m.codes[email] = code
	return code.Attempts, nil
}

func (m *MemoryStore) ResetAttempts(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[email]
	if !ok {
		return storage.ErrNotFound
	}
	code.Attempts = 0
	m.codes[email] = code
	return nil
}

func (m *MemoryStore) DeleteCode(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[email]; !ok {
		return storage.ErrNotFound
	}
	delete(m.codes, email)
	return nil
}

func (m *MemoryStore) DeleteExpiredCodes(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for email, code := range m.codes {
		if code.IsExpiredAt(now) {
			delete(m.codes, email)
			n++
		}
	}
	return n, nil
}

package storage

import (
	"context"
	"time"

	"github.com/hongminglow/account-be/internal/logger"
)

// PurgeFunc deletes rows that expired at or before now.
type PurgeFunc func(ctx context.Context, now time.Time) (int64, error)

// Purger periodically removes expired verification codes and revocations.
type Purger struct {
	interval time.Duration
	tasks    map[string]PurgeFunc
	logger   *logger.Logger
}

// NewPurger creates a Purger running every interval.
func NewPurger(interval time.Duration, logger *logger.Logger) *Purger {
	return &Purger{interval: interval, tasks: make(map[string]PurgeFunc), logger: logger}
}

// Add registers a named task.
func (p *Purger) Add(name string, fn PurgeFunc) {
	p.tasks[name] = fn
}

// Run purges on every tick until ctx is cancelled.
func (p *Purger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			p.RunOnce(ctx, now)
		}
	}
}

// RunOnce executes every task once.
func (p *Purger) RunOnce(ctx context.Context, now time.Time) {
	for name, fn := range p.tasks {
		n, err := fn(ctx, now)
		if err != nil {
			p.logger.Error("purge failed", "task", name, "error", err.Error())
			continue
		}
		if n > 0 {
			p.logger.Info("purged expired rows", "task", name, "count", n)
		}
	}
}

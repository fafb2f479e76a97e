// Package janitor runs the periodic expiry sweeps: stale pending
// registrations, old revoked tokens, and audit records past retention.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/myspares/catalog-platform/internal/config"
	repository "github.com/myspares/catalog-platform/internal/repositories"
)

type Janitor struct {
	cfg    config.Janitor
	users  repository.UserRepository
	audits repository.AuditRepository

	done chan struct{}
}

func New(cfg config.Janitor, users repository.UserRepository, audits repository.AuditRepository) *Janitor {
	return &Janitor{cfg: cfg, users: users, audits: audits, done: make(chan struct{})}
}

// Start runs the sweep loop until the context is cancelled. The loop
// itself never fails; individual sweeps log their errors and the next
// tick tries again.
func (j *Janitor) Start(ctx context.Context) {
	go func() {
		defer close(j.done)

		ticker := time.NewTicker(j.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("janitor stopped")
				return
			case <-ticker.C:
				j.Sweep(ctx)
			}
		}
	}()

	slog.Info("janitor started", slog.Duration("interval", j.cfg.Interval))
}

// Wait blocks until the sweep loop has exited.
func (j *Janitor) Wait() {
	<-j.done
}

// Sweep runs the three expiries. They are independent: one failing does
// not block the others.
func (j *Janitor) Sweep(ctx context.Context) {
	now := time.Now()

	if n, err := j.users.DeletePendingOlderThan(ctx, now.Add(-j.cfg.PendingRegistrationTTL)); err != nil {
		slog.Error("failed to sweep pending registrations", slog.Any("error", err))
	} else if n > 0 {
		slog.Info("swept stale pending registrations", slog.Int64("deleted", n))
	}

	if n, err := j.users.DeleteRevokedOlderThan(ctx, now.Add(-j.cfg.RevokedTokenTTL)); err != nil {
		slog.Error("failed to sweep revoked tokens", slog.Any("error", err))
	} else if n > 0 {
		slog.Info("swept expired revoked tokens", slog.Int64("deleted", n))
	}

	if n, err := j.audits.DeleteOlderThan(ctx, now.Add(-j.cfg.AuditRetention)); err != nil {
		slog.Error("failed to sweep audit records", slog.Any("error", err))
	} else if n > 0 {
		slog.Info("swept expired audit records", slog.Int64("deleted", n))
	}
}

// Package inventory holds the ticket inventory core: the consistency guard,
// seat allocation, venue-level provisioning and cart reservations.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metinatakli/cinema-ticket-inventory/internal/domain"
	"github.com/metinatakli/cinema-ticket-inventory/internal/lock"
)

const (
	DefaultMaxRetries   = 3
	DefaultLockWait     = 2 * time.Second
	defaultRetryBackoff = 5 * time.Millisecond
	defaultOpTimeout    = 10 * time.Second
)

// Guard serializes inventory mutations per resource key and runs them in a
// unit of work. Lost updates detected by the store are retried a bounded
// number of times before they surface as domain.ErrConflict.
type Guard struct {
	locker       lock.Locker
	uow          domain.UnitOfWork
	logger       *slog.Logger
	metrics      *metrics
	maxRetries   int
	lockWait     time.Duration
	retryBackoff time.Duration
	opTimeout    time.Duration
}

type GuardOption func(*Guard)

func WithMaxRetries(n int) GuardOption {
	return func(g *Guard) {
		g.maxRetries = n
	}
}

// WithLockWait bounds how long Do waits for its keys before giving up with
// domain.ErrConflict.
func WithLockWait(d time.Duration) GuardOption {
	return func(g *Guard) {
		g.lockWait = d
	}
}

func WithRetryBackoff(d time.Duration) GuardOption {
	return func(g *Guard) {
		g.retryBackoff = d
	}
}

func NewGuard(locker lock.Locker, uow domain.UnitOfWork, logger *slog.Logger, opts ...GuardOption) *Guard {
	g := &Guard{
		locker:       locker,
		uow:          uow,
		logger:       logger,
		metrics:      newMetrics(),
		maxRetries:   DefaultMaxRetries,
		lockWait:     DefaultLockWait,
		retryBackoff: defaultRetryBackoff,
		opTimeout:    defaultOpTimeout,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Do holds every key while fn runs inside a transaction. Once the keys are
// held the caller's cancellation no longer applies: fn either commits or
// rolls back.
func (g *Guard) Do(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	lockCtx, cancel := context.WithTimeout(ctx, g.lockWait)
	release, err := g.locker.Acquire(lockCtx, keys...)
	cancel()

	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			g.metrics.conflicts.Add(ctx, 1)
			g.logger.Warn("inventory lock not acquired", "keys", keys, "error", err)
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		}

		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	opCtx, cancelOp := context.WithTimeout(context.WithoutCancel(ctx), g.opTimeout)
	defer cancelOp()

	defer func() {
		if err := release(opCtx); err != nil {
			g.logger.Error("failed to release inventory lock", "keys", keys, "error", err)
		}
	}()

	for attempt := 1; ; attempt++ {
		err = g.uow.WithTx(opCtx, fn)
		if !errors.Is(err, domain.ErrEditConflict) {
			return err
		}

		if attempt > g.maxRetries {
			g.metrics.conflicts.Add(ctx, 1)
			g.logger.Warn("giving up after repeated edit conflicts", "keys", keys, "attempts", attempt)
			return fmt.Errorf("%w: gave up after %d attempts", domain.ErrConflict, attempt)
		}

		g.logger.Debug("retrying after edit conflict", "keys", keys, "attempt", attempt, "error", err)
		time.Sleep(g.retryBackoff * time.Duration(attempt))
	}
}

func ticketKey(id int) string {
	return fmt.Sprintf("ticket:%d", id)
}

func showingKey(id int) string {
	return fmt.Sprintf("showing:%d", id)
}

func cartKey(id int) string {
	return fmt.Sprintf("cart:%d", id)
}

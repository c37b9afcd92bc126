// Package lock provides exclusive scopes over named resources, either inside
// one process or across instances sharing a Redis server.
package lock

import (
	"context"
	"errors"
	"slices"
)

var (
	ErrNotAcquired = errors.New("lock not acquired")
	ErrNotOwned    = errors.New("lock is no longer owned by this holder")
)

// ReleaseFunc gives up every key acquired by a single Acquire call.
type ReleaseFunc func(ctx context.Context) error

type Locker interface {
	// Acquire holds all keys or none. It gives up with ErrNotAcquired once
	// ctx is done or the locker's own retry budget is spent.
	Acquire(ctx context.Context, keys ...string) (ReleaseFunc, error)
}

// normalizeKeys sorts and deduplicates keys so that callers locking
// overlapping sets always acquire them in the same order.
func normalizeKeys(keys []string) []string {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)

	return slices.Compact(sorted)
}

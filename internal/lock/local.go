package lock

import (
	"context"
	"fmt"
	"sync"
)

// LocalLocker is an in-process Locker backed by one semaphore per key.
// Entries are reference counted and dropped once nobody waits on them.
type LocalLocker struct {
	mu      sync.Mutex
	entries map[string]*localEntry
}

type localEntry struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		entries: make(map[string]*localEntry),
	}
}

func (l *LocalLocker) Acquire(ctx context.Context, keys ...string) (ReleaseFunc, error) {
	keys = normalizeKeys(keys)
	held := make([]string, 0, len(keys))

	for _, key := range keys {
		entry := l.ref(key)

		select {
		case entry.sem <- struct{}{}:
			held = append(held, key)
		case <-ctx.Done():
			l.unref(key)
			l.release(held)
			return nil, fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, ctx.Err())
		}
	}

	var once sync.Once

	return func(context.Context) error {
		once.Do(func() { l.release(held) })
		return nil
	}, nil
}

func (l *LocalLocker) release(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		entry := l.entries[keys[i]]
		l.mu.Unlock()

		<-entry.sem
		l.unref(keys[i])
	}
}

func (l *LocalLocker) ref(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		entry = &localEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = entry
	}
	entry.refs++

	return entry
}

func (l *LocalLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.entries[key]
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
}

package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisLockTTL    = 30 * time.Second
	defaultRedisRetries    = 40
	defaultRedisRetryDelay = 25 * time.Millisecond
	redisKeyPrefix         = "inventory_lock:"
)

var acquireScript = redis.NewScript(`
    -- KEYS = lock keys (e.g., inventory_lock:ticket:12, inventory_lock:cart:3)
    -- ARGV = [owner token, ttl in milliseconds]

    for i=1, #KEYS do
        if redis.call("EXISTS", KEYS[i]) == 1 then
            return 0
        end
    end

    for i=1, #KEYS do
        redis.call("SET", KEYS[i], ARGV[1], "PX", ARGV[2])
    end

    return 1
`)

var releaseScript = redis.NewScript(`
    local released = 0

    for i=1, #KEYS do
        if redis.call("GET", KEYS[i]) == ARGV[1] then
            redis.call("DEL", KEYS[i])
            released = released + 1
        end
    end

    return released
`)

// RedisLocker is a Locker shared by every instance talking to the same Redis.
// All keys of one Acquire call are set atomically by a script, each holding
// the caller's owner token so that release never deletes someone else's lock.
type RedisLocker struct {
	client     redis.Scripter
	ttl        time.Duration
	retries    int
	retryDelay time.Duration
	newToken   func() string
}

type RedisLockerOption func(*RedisLocker)

// WithTTL bounds how long a crashed holder can keep keys locked.
func WithTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		l.ttl = ttl
	}
}

func WithRetry(retries int, delay time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		l.retries = retries
		l.retryDelay = delay
	}
}

func NewRedisLocker(client redis.Scripter, opts ...RedisLockerOption) *RedisLocker {
	l := &RedisLocker{
		client:     client,
		ttl:        defaultRedisLockTTL,
		retries:    defaultRedisRetries,
		retryDelay: defaultRedisRetryDelay,
		newToken:   uuid.NewString,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (ReleaseFunc, error) {
	redisKeys := normalizeKeys(keys)
	for i, key := range redisKeys {
		redisKeys[i] = redisKeyPrefix + key
	}

	token := l.newToken()

	for attempt := 0; ; attempt++ {
		acquired, err := acquireScript.Run(ctx, l.client, redisKeys, token, l.ttl.Milliseconds()).Int()
		if err != nil {
			// the wait ran out while the script was in flight
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %v: %w", ErrNotAcquired, keys, err)
			}

			return nil, fmt.Errorf("failed to run lock script: %w", err)
		}

		if acquired == 1 {
			return l.releaseFunc(redisKeys, token), nil
		}

		if attempt >= l.retries {
			return nil, fmt.Errorf("%w: %v", ErrNotAcquired, keys)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v: %w", ErrNotAcquired, keys, ctx.Err())
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *RedisLocker) releaseFunc(redisKeys []string, token string) ReleaseFunc {
	return func(ctx context.Context) error {
		released, err := releaseScript.Run(ctx, l.client, redisKeys, token).Int()
		if err != nil {
			return fmt.Errorf("failed to run unlock script: %w", err)
		}

		if released != len(redisKeys) {
			return fmt.Errorf("%w: released %d of %d keys", ErrNotOwned, released, len(redisKeys))
		}

		return nil
	}
}

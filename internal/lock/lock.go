// Package lock serializes generate() calls for the same (year, month)
// across concurrent requests. Spec §5 requires generation to behave as
// if single-threaded per (year, month); this package is what enforces
// that across API requests, and across app instances when REDIS_URL is
// configured.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker acquires and releases the named (year, month) lock.
type Locker interface {
	Lock(ctx context.Context, year, month int) (Unlock, error)
}

// Unlock releases a previously acquired lock.
type Unlock func()

// Key returns the canonical lock name for a (year, month) pair.
func Key(year, month int) string {
	return fmt.Sprintf("sacristy:generate:%d-%02d", year, month)
}

// memLocker is the in-process fallback used when no Redis URL is
// configured — a single sacristy instance, one mutex per key.
type memLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMemLocker returns a Locker backed by in-process mutexes.
func NewMemLocker() Locker {
	return &memLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *memLocker) Lock(ctx context.Context, year, month int) (Unlock, error) {
	key := Key(year, month)

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.Lock()
		close(done)
	}()

	select {
	case <-done:
		return func() { m.Unlock() }, nil
	case <-ctx.Done():
		go func() { <-done; m.Unlock() }()
		return nil, ctx.Err()
	}
}

// redisLocker backs the lock with a Redis SETNX-with-expiry, for
// deployments running more than one sacristy instance against the same
// PocketBase data directory.
type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisLocker returns a Locker backed by client.
func NewRedisLocker(client *redis.Client) Locker {
	return &redisLocker{client: client, ttl: 2 * time.Minute, retry: 100 * time.Millisecond}
}

func (l *redisLocker) Lock(ctx context.Context, year, month int) (Unlock, error) {
	key := Key(year, month)
	token := fmt.Sprintf("%d", time.Now().UnixNano())

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring redis lock %s: %w", key, err)
		}
		if ok {
			return func() {
				l.client.Del(context.Background(), key)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

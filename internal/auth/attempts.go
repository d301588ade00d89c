package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// LoginAttempts counts consecutive failed logins per account key.
type LoginAttempts interface {
	// Fail increments the counter for key and returns the new value.
	Fail(ctx context.Context, key string) (int, error)
	// Reset sets the counter for key back to zero.
	Reset(ctx context.Context, key string) error
}

// MemoryAttempts keeps counters in process memory. Counters are neither
// persisted nor shared between instances.
type MemoryAttempts struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemoryAttempts returns an empty in-memory counter.
func NewMemoryAttempts() *MemoryAttempts {
	return &MemoryAttempts{counts: make(map[string]int)}
}

// Fail increments the counter for key and returns the new value.
func (m *MemoryAttempts) Fail(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

// Reset forgets the counter for key.
func (m *MemoryAttempts) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counts, key)
	return nil
}

// Count returns the current counter for key.
func (m *MemoryAttempts) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

// RedisAttempts keeps counters in Redis so several instances share them.
type RedisAttempts struct {
	client *redis.Client
	prefix string
}

// NewRedisAttempts stores counters under "login_attempts:<key>".
func NewRedisAttempts(client *redis.Client) *RedisAttempts {
	return &RedisAttempts{client: client, prefix: "login_attempts:"}
}

// Fail increments the counter for key with INCR and returns the new value.
func (r *RedisAttempts) Fail(ctx context.Context, key string) (int, error) {
	n, err := r.client.Incr(ctx, r.prefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr login attempts: %w", err)
	}
	return int(n), nil
}

// Reset deletes the counter for key.
func (r *RedisAttempts) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

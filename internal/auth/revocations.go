package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Revocations remembers logged-out token IDs until they expire.
type Revocations interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevocations is a process-local revocation list.
type MemoryRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocations creates an empty list.
func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{entries: make(map[string]time.Time), now: time.Now}
}

// Revoke implements Revocations.
func (m *MemoryRevocations) Revoke(_ context.Context, jti string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[jti] = until
	m.pruneLocked()
	return nil
}

// IsRevoked implements Revocations.
func (m *MemoryRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if m.now().After(until) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

func (m *MemoryRevocations) pruneLocked() {
	now := m.now()
	for jti, until := range m.entries {
		if now.After(until) {
			delete(m.entries, jti)
		}
	}
}

// RedisRevocations shares the revocation list between API replicas.
type RedisRevocations struct {
	client *redis.Client
	prefix string
}

// NewRedisRevocations creates a Redis-backed list.
func NewRedisRevocations(client *redis.Client, prefix string) *RedisRevocations {
	if prefix == "" {
		prefix = "labproj:revoked:"
	}
	return &RedisRevocations{client: client, prefix: prefix}
}

// Revoke implements Revocations.
func (r *RedisRevocations) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.prefix+jti, "1", ttl).Err()
}

// IsRevoked implements Revocations.
func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, r.prefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

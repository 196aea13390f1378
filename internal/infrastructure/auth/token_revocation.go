package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "shopdesk:token:revoked:"

// RedisTokenRevocations stores revoked token IDs in Redis with a TTL
// equal to the token's remaining lifetime.
type RedisTokenRevocations struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisConfig holds connection settings for the revocation store
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTokenRevocations connects to Redis and verifies the connection
func NewRedisTokenRevocations(ctx context.Context, cfg RedisConfig) (*RedisTokenRevocations, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for token revocation: %w", err)
	}

	return NewRedisTokenRevocationsWithClient(client), nil
}

// NewRedisTokenRevocationsWithClient wraps an existing client
func NewRedisTokenRevocationsWithClient(client redis.UniversalClient) *RedisTokenRevocations {
	return &RedisTokenRevocations{
		client:    client,
		keyPrefix: revocationKeyPrefix,
	}
}

func (r *RedisTokenRevocations) key(tokenID string) string {
	return r.keyPrefix + tokenID
}

// Revoke marks tokenID revoked for ttl
func (r *RedisTokenRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked
func (r *RedisTokenRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// Ping checks that Redis is reachable
func (r *RedisTokenRevocations) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (r *RedisTokenRevocations) Close() error {
	return r.client.Close()
}

// InMemoryTokenRevocations is a process-local revocation list.
// Revocations are not shared between instances.
type InMemoryTokenRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewInMemoryTokenRevocations creates an empty in-memory list
func NewInMemoryTokenRevocations() *InMemoryTokenRevocations {
	return &InMemoryTokenRevocations{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke marks tokenID revoked for ttl
func (m *InMemoryTokenRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = m.now().Add(ttl)
	m.sweepLocked()
	return nil
}

// IsRevoked reports whether tokenID is revoked and not yet expired
func (m *InMemoryTokenRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(expiry) {
		delete(m.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// Len returns the number of tracked tokens
func (m *InMemoryTokenRevocations) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.revoked)
}

func (m *InMemoryTokenRevocations) sweepLocked() {
	now := m.now()
	for id, expiry := range m.revoked {
		if !now.Before(expiry) {
			delete(m.revoked, id)
		}
	}
}

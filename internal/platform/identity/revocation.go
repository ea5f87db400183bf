package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
)

const revokedKeyPrefix = "revoked:"

// RedisRevocationList is a deny-list of token IDs kept in Redis under
// "revoked:<jti>" keys. Entries should expire with the token they revoke.
type RedisRevocationList struct {
	client *redis.Client
}

// NewRedisRevocationList connects to the Redis instance named in cfg.
// The connection is lazy; use HealthCheck to verify reachability.
func NewRedisRevocationList(cfg config.RevocationConfig) *RedisRevocationList {
	return &RedisRevocationList{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}),
	}
}

// IsRevoked reports whether tokenID is on the deny-list.
func (l *RedisRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := l.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Revoke adds tokenID to the deny-list for ttl. A zero ttl keeps the entry
// until it is removed by hand.
func (l *RedisRevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return errors.New("revoke: empty token id")
	}
	if err := l.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Name implements ports.HealthChecker.
func (l *RedisRevocationList) Name() string {
	return "redis"
}

// HealthCheck pings Redis.
func (l *RedisRevocationList) HealthCheck(ctx context.Context) error {
	if err := l.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (l *RedisRevocationList) Close() error {
	return l.client.Close()
}

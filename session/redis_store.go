package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tmsuite/console-gateway/models"
	"go.uber.org/zap"
)

const redisKeyPrefix = "console:session:"

// RedisStore is a redis-backed session store. Entries are JSON with a
// TTL; expiry in redis is the session expiry.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a redis-backed session store.
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func redisKey(sid string) string {
	return redisKeyPrefix + sid
}

// Get retrieves a session entry. Absent and corrupted entries both
// return (nil, nil); a corrupted entry is deleted on the way out.
func (s *RedisStore) Get(ctx context.Context, sid string) (*models.Session, error) {
	val, err := s.client.Get(ctx, redisKey(sid)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		s.logger.Warn("discarding corrupted session entry",
			zap.String("session_id", sid),
			zap.Error(err))
		_ = s.client.Del(ctx, redisKey(sid)).Err()
		return nil, nil
	}

	return &sess, nil
}

// Put stores a session entry with the given TTL.
func (s *RedisStore) Put(ctx context.Context, sid string, sess *models.Session, ttl time.Duration) error {
	if sid == "" {
		return fmt.Errorf("session: missing session id")
	}
	if ttl <= 0 {
		return fmt.Errorf("session: ttl must be positive")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(sid), data, ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

// Delete removes a session entry. Deleting an absent entry is a no-op.
func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, redisKey(sid)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

// HealthCheck pings redis.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("session store health check failed: %w", err)
	}
	return nil
}

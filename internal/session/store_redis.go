package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session as one hash at "<prefix>:<sessionID>".
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisStore(rdb redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "dashboard:session"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	if err := validate(sessionID, key); err != nil {
		return "", err
	}
	v, err := s.rdb.HGet(ctx, s.key(sessionID), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("session: redis get: %w", err)
	}
	return v, nil
}

// Set writes the field and refreshes the hash TTL in one round trip.
func (s *RedisStore) Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	if err := validate(sessionID, key); err != nil {
		return err
	}
	if ttl <= 0 {
		return ErrInvalidArgument
	}
	k := s.key(sessionID)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, key, value)
		p.PExpire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidArgument
	}
	if err := s.rdb.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("session: redis delete: %w", err)
	}
	return nil
}

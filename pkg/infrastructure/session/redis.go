package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"storefront/pkg/cart/domain/model"
)

const keyPrefix = "storefront:cart:"

// RedisStorage keeps carts in Redis. Every save refreshes the expiry.
type RedisStorage struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ model.CartStorage = (*RedisStorage)(nil)

func NewRedisStorage(client redis.UniversalClient, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (s *RedisStorage) Load(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get cart")
	}
	return data, nil
}

func (s *RedisStorage) Save(ctx context.Context, sessionID string, data []byte) error {
	return errors.Wrap(s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err(), "redis set cart")
}

func (s *RedisStorage) Delete(ctx context.Context, sessionID string) error {
	return errors.Wrap(s.client.Del(ctx, cartKey(sessionID)).Err(), "redis delete cart")
}

func cartKey(sessionID string) string {
	return keyPrefix + sessionID
}

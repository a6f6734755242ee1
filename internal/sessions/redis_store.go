package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/thereayou/secure-profile/internal/models"
)

const keyPrefix = "session:"

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", ErrSessionStore, err)
	}

	var sess models.Session
	if err := msgpack.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSessionStore, err)
	}
	return &sess, nil
}

func (s *RedisStore) Set(ctx context.Context, id string, sess *models.Session, ttl time.Duration) error {
	data, err := msgpack.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrSessionStore, err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %v", ErrSessionStore, err)
	}
	return nil
}

func (s *RedisStore) Replace(ctx context.Context, id string, sess *models.Session, ttl time.Duration) error {
	data, err := msgpack.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrSessionStore, err)
	}
	ok, err := s.rdb.SetXX(ctx, keyPrefix+id, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: set xx: %v", ErrSessionStore, err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) Touch(ctx context.Context, id string, ttl time.Duration) error {
	ok, err := s.rdb.PExpire(ctx, keyPrefix+id, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: expire: %v", ErrSessionStore, err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("%w: del: %v", ErrSessionStore, err)
	}
	return nil
}

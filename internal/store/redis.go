package store

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "healthjournal"

type Redis struct {
	rdb *goredis.Client
}

func NewRedis(rdb *goredis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func redisKey(userID, key string) string {
	return fmt.Sprintf("%s:user:%s:%s", redisKeyPrefix, userID, key)
}

func (r *Redis) Get(ctx context.Context, userID, key string) ([]byte, error) {
	value, err := r.rdb.Get(ctx, redisKey(userID, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (r *Redis) Put(ctx context.Context, userID, key string, value []byte) error {
	if err := r.rdb.Set(ctx, redisKey(userID, key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, userID, key string) error {
	if err := r.rdb.Del(ctx, redisKey(userID, key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

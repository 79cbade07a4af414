package kvstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mestawet/gebeya/config"
)

// redisStore keeps client state in a shared Redis instance, which lets one
// session survive across machines. Keys are namespaced under gebeya:state:.
type redisStore struct {
	rdb *redis.Client
	ctx context.Context
}

func newRedisStore() (*redisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("kvstore/redis: ping: %w", err)
	}
	return &redisStore{rdb: rdb, ctx: ctx}, nil
}

func redisKey(key string) string { return "gebeya:state:" + key }

func (r *redisStore) Get(key string) ([]byte, bool, error) {
	val, err := r.rdb.Get(r.ctx, redisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kvstore/redis: get %s: %w", key, err)
	}
	return val, true, nil
}

func (r *redisStore) Put(key string, value []byte) error {
	// 0 TTL: client state persists until explicitly cleared.
	if err := r.rdb.Set(r.ctx, redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("kvstore/redis: put %s: %w", key, err)
	}
	return nil
}

func (r *redisStore) Delete(key string) error {
	if err := r.rdb.Del(r.ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("kvstore/redis: delete %s: %w", key, err)
	}
	return nil
}

func (r *redisStore) Exists(key string) bool {
	n, err := r.rdb.Exists(r.ctx, redisKey(key)).Result()
	return err == nil && n > 0
}

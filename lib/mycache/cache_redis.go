package mycache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCache struct {
	client *redis.Client
}

func newRedisCache(c context.Context, addr string) (Cache, func(), error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	err := client.Ping(c).Err()
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("error connecting to redis at %s: %s", addr, err)
	}
	return &redisCache{
			client: client,
		}, func() {
			client.Close()
		}, nil
}

func (r *redisCache) Get(c context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(c, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error getting key %s: %s", key, err)
	}
	return value, true, nil
}

func (r *redisCache) Set(c context.Context, key string, value string, ttl time.Duration) error {
	err := r.client.Set(c, key, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("error setting key %s: %s", key, err)
	}
	return nil
}

func (r *redisCache) Delete(c context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := r.client.Del(c, keys...).Err()
	if err != nil {
		return fmt.Errorf("error deleting keys %v: %s", keys, err)
	}
	return nil
}

func (r *redisCache) Ping(c context.Context) error {
	return r.client.Ping(c).Err()
}

package mycache

import (
	"context"
	"time"
)

type Options struct {
	RedisAddr string
}

// Cache holds short-lived string values such as the cart handed over to checkout.
//
//go:generate mockgen -source=api.go -package mycache -destination cache_mock.go Cache
type Cache interface {
	Get(c context.Context, key string) (string, bool, error)
	Set(c context.Context, key string, value string, ttl time.Duration) error
	Delete(c context.Context, keys ...string) error
	Ping(c context.Context) error
}

func New(c context.Context, opts Options) (Cache, func(), error) {
	if opts.RedisAddr != "" {
		return newRedisCache(c, opts.RedisAddr)
	}
	return newInMemoryCache(), func() {}, nil
}

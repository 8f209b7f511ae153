package mycache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

type inMemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func newInMemoryCache() *inMemoryCache {
	return &inMemoryCache{
		entries: map[string]entry{},
		now:     time.Now,
	}
}

func (m *inMemoryCache) Get(c context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, found := m.entries[key]
	if !found {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *inMemoryCache) Set(c context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *inMemoryCache) Delete(c context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *inMemoryCache) Ping(c context.Context) error {
	return nil
}

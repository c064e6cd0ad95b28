package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type cacheEntry struct {
	raw    []byte
	expiry time.Time
}

// TrackingCache is an in-memory cache that stores values as JSON, the way
// the redis cache does, and counts calls.
type TrackingCache struct {
	mu          sync.Mutex
	data        map[string]cacheEntry
	GetCalls    int
	SetCalls    int
	DeleteCalls int
}

func NewTrackingCache() *TrackingCache {
	return &TrackingCache{data: make(map[string]cacheEntry)}
}

func (c *TrackingCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.GetCalls++
	entry, ok := c.data[key]
	if !ok || time.Now().After(entry.expiry) {
		return redis.Nil
	}
	return json.Unmarshal(entry.raw, dest)
}

func (c *TrackingCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.SetCalls++
	c.data[key] = cacheEntry{raw: raw, expiry: time.Now().Add(exp)}
	return nil
}

func (c *TrackingCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.DeleteCalls++
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *TrackingCache) Close() error {
	return nil
}

// Has reports whether key holds an unexpired entry.
func (c *TrackingCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	return ok && time.Now().Before(entry.expiry)
}

func (c *TrackingCache) Stats() (gets, sets, deletes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.GetCalls, c.SetCalls, c.DeleteCalls
}

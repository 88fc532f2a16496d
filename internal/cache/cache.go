// Package cache memoizes successful generation results.
//
// Backed by Redis when REDIS_URL is configured, with an in-memory map
// fallback so the bridge behaves the same in local development.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"aura-bridge/internal/logging"
)

// Cache is a byte-value cache with TTL semantics.
type Cache struct {
	rdb *redis.Client

	mu   sync.RWMutex
	mem  map[string]entry
	stop chan struct{}
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// New creates a cache. redisURL may be empty; the in-memory fallback is
// always active and Redis is layered on top when reachable.
func New(redisURL string) *Cache {
	c := &Cache{
		mem:  make(map[string]entry),
		stop: make(chan struct{}),
	}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logging.S().Warnw("invalid REDIS_URL, using in-memory cache only", "error", err)
		} else {
			c.rdb = redis.NewClient(opts)
		}
	}

	go c.cleanupLoop()
	return c
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.rdb != nil {
		if val, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
			return val, true
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.mem[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. Redis failures degrade silently to
// the in-memory copy.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
			logging.S().Debugw("redis set failed", "error", err)
		}
	}

	c.mu.Lock()
	c.mem[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Close releases the Redis connection and stops the cleanup loop.
func (c *Cache) Close() error {
	close(c.stop)
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, e := range c.mem {
				if now.After(e.expiresAt) {
					delete(c.mem, k)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

// Package ratelimit provides per-key fixed-window request limiting, either
// distributed through Redis or in-process for single-instance deployments.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter reports whether a request identified by key fits in its quota.
type Limiter interface {
	Allow(key string) bool
}

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisLimiter is a Redis-backed fixed-window limiter shared across
// instances. On Redis failures it fails closed.
type RedisLimiter struct {
	limit  int
	window time.Duration

	client *redis.Client
	prefix string
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(addr, password, prefix string, limit int, window time.Duration) (*RedisLimiter, error) {
	if limit <= 0 || window <= 0 {
		return nil, errors.New("ratelimit: limit and window must be positive")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("ratelimit: redis addr is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "voicebox:ratelimit"
	}
	return &RedisLimiter{
		limit:  limit,
		window: window,
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix: prefix,
	}, nil
}

// Allow returns true when the key is within quota for the current window.
func (l *RedisLimiter) Allow(key string) bool {
	if l == nil {
		return false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	windowMs := l.window.Milliseconds()
	windowSlot := time.Now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, windowSlot)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	count, errRun := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if errRun != nil {
		return false
	}
	return count <= int64(l.limit)
}

// MemoryLimiter is an in-process fixed-window limiter, used when no Redis
// address is configured. Counters for a window are dropped when the window
// rolls over.
type MemoryLimiter struct {
	limit  int
	window time.Duration

	mu     sync.Mutex
	slot   int64
	counts map[string]int
}

// NewMemoryLimiter creates an in-process limiter.
func NewMemoryLimiter(limit int, window time.Duration) (*MemoryLimiter, error) {
	if limit <= 0 || window <= 0 {
		return nil, errors.New("ratelimit: limit and window must be positive")
	}
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		counts: make(map[string]int),
	}, nil
}

// Allow returns true when the key is within quota for the current window.
func (l *MemoryLimiter) Allow(key string) bool {
	if l == nil {
		return false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	slot := time.Now().UTC().UnixMilli() / l.window.Milliseconds()

	l.mu.Lock()
	defer l.mu.Unlock()
	if slot != l.slot {
		l.slot = slot
		l.counts = make(map[string]int)
	}
	l.counts[key]++
	return l.counts[key] <= l.limit
}

// New picks a Redis-backed limiter when addr is non-empty, otherwise an
// in-process one.
func New(addr, password, prefix string, limit int, window time.Duration) (Limiter, error) {
	if strings.TrimSpace(addr) != "" {
		return NewRedisLimiter(addr, password, prefix, limit, window)
	}
	return NewMemoryLimiter(limit, window)
}

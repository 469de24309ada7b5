package cache

import (
	"sync"
	"time"

	"world-vlog/domain/model"
	"world-vlog/infrastructure/metrics"

	"go.uber.org/atomic"
)

const (
	DefaultCapacity = 300
	DefaultTTL      = 6 * time.Hour
)

type entry struct {
	videos    []model.VideoResult
	expiresAt time.Time
	hits      *atomic.Int64
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryCache is the in-process tier: bounded, TTL expiry, least-frequently-used eviction.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	capacity int
	ttl      time.Duration
	now      func() time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Option customises a MemoryCache.
type Option func(*MemoryCache)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) { c.now = now }
}

func NewMemoryCache(capacity int, ttl time.Duration, opts ...Option) *MemoryCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryCache{
		entries:  make(map[string]*entry, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the cached list. Expired entries are a miss.
func (c *MemoryCache) Get(key string) ([]model.VideoResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	if !ok || e.expired(c.now()) {
		c.mu.RUnlock()
		c.misses.Inc()
		return nil, false
	}
	e.hits.Inc()
	videos := model.CloneVideos(e.videos)
	c.mu.RUnlock()

	c.hits.Inc()
	return videos, true
}

// Set stores videos under key with the cache TTL, evicting first so the bound always holds.
func (c *MemoryCache) Set(key string, videos []model.VideoResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.evictLocked(key, now)
	c.entries[key] = &entry{
		videos:    model.CloneVideos(videos),
		expiresAt: now.Add(c.ttl),
		hits:      atomic.NewInt64(0),
	}
}

// evictLocked drops expired entries, then the lowest-hit entry if a new key would overflow.
// Ties go to whichever entry map iteration visits first.
func (c *MemoryCache) evictLocked(incoming string, now time.Time) {
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			c.evictions.Inc()
			metrics.CacheEvictions.WithLabelValues("expired").Inc()
		}
	}
	if _, exists := c.entries[incoming]; exists {
		return
	}
	for len(c.entries) >= c.capacity {
		victim := ""
		var lowest int64
		for k, e := range c.entries {
			if h := e.hits.Load(); victim == "" || h < lowest {
				victim, lowest = k, h
			}
		}
		delete(c.entries, victim)
		c.evictions.Inc()
		metrics.CacheEvictions.WithLabelValues("lfu").Inc()
	}
}

// Flush empties the cache and returns how many entries were dropped.
func (c *MemoryCache) Flush() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]*entry, c.capacity)
	return n
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) Capacity() int { return c.capacity }

// Stats is a point-in-time view of the cache counters.
type Stats struct {
	Entries   int
	Capacity  int
	Hits      int64
	Misses    int64
	Evictions int64
}

func (c *MemoryCache) Stats() Stats {
	return Stats{
		Entries:   c.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

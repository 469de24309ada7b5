package usecase

import (
	"context"
	"time"

	"world-vlog/domain/model"
	"world-vlog/domain/repository"
	"world-vlog/infrastructure/cache"
	"world-vlog/infrastructure/logger"
	"world-vlog/infrastructure/metrics"

	"golang.org/x/sync/singleflight"
)

// CacheConfig tunes the persistent tier; the memory tier carries its own capacity and TTL.
type CacheConfig struct {
	PersistentTTL time.Duration
	StoreTimeout  time.Duration
}

// Fetcher produces fresh results on a full cache miss. Its ctx is not cancelled when a caller
// leaves, so every external call it makes carries its own timeout.
type Fetcher func(ctx context.Context) ([]model.VideoResult, error)

type ITieredVideoCache interface {
	GetOrFetch(ctx context.Context, key model.CacheKey, fetch Fetcher) ([]model.VideoResult, model.Provenance, error)
	Flush() int
	Stats() cache.Stats
}

// TieredVideoCache reads memory, then the persistent store, then the fetcher, writing fresh
// non-empty results back through both tiers.
type TieredVideoCache struct {
	memory *cache.MemoryCache
	store  repository.IVideoCache
	cfg    CacheConfig
	group  singleflight.Group
	now    func() time.Time
}

type cacheOutcome struct {
	videos []model.VideoResult
	source model.Provenance
}

// NewTieredVideoCache accepts a nil store, in which case only the memory tier is used.
func NewTieredVideoCache(memory *cache.MemoryCache, store repository.IVideoCache, cfg CacheConfig) *TieredVideoCache {
	if cfg.PersistentTTL <= 0 {
		cfg.PersistentTTL = 7 * 24 * time.Hour
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 3 * time.Second
	}
	return &TieredVideoCache{memory: memory, store: store, cfg: cfg, now: time.Now}
}

func (c *TieredVideoCache) GetOrFetch(ctx context.Context, key model.CacheKey, fetch Fetcher) ([]model.VideoResult, model.Provenance, error) {
	id := key.ID()
	log := logger.GetLogger().WithField("place", key.Place).WithField("mode", key.Mode).WithField("region", key.Region)

	if videos, ok := c.memory.Get(id); ok {
		metrics.CacheLookups.WithLabelValues(string(model.ProvenanceMemory)).Inc()
		log.WithField("count", len(videos)).Debug("Memory cache hit")
		return videos, model.ProvenanceMemory, nil
	}

	// concurrent misses for the same key share one store lookup and one provider fetch. The shared
	// work is detached from the first caller's cancellation; each caller only stops waiting on its own.
	flight := context.WithoutCancel(ctx)
	ch := c.group.DoChan(id, func() (interface{}, error) {
		if doc := c.readPersistent(flight, id); doc != nil {
			c.memory.Set(id, doc.Videos)
			log.WithField("count", len(doc.Videos)).Info("Persistent cache hit")
			return cacheOutcome{videos: doc.Videos, source: model.ProvenancePersistent}, nil
		}

		videos, err := fetch(flight)
		if err != nil {
			return nil, err
		}
		if len(videos) == 0 {
			log.Info("Search returned no videos, not caching")
			return cacheOutcome{videos: []model.VideoResult{}, source: model.ProvenanceMiss}, nil
		}
		c.writePersistent(flight, id, videos)
		c.memory.Set(id, videos)
		log.WithField("count", len(videos)).Info("Cached fresh search results")
		return cacheOutcome{videos: videos, source: model.ProvenanceMiss}, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		log.WithField("error", ctx.Err()).Debug("Caller left before lookup finished")
		return nil, model.ProvenanceMiss, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, model.ProvenanceMiss, res.Err
	}

	out := res.Val.(cacheOutcome)
	if res.Shared {
		log.Debug("Joined in-flight lookup")
	}
	metrics.CacheLookups.WithLabelValues(string(out.source)).Inc()
	return model.CloneVideos(out.videos), out.source, nil
}

// readPersistent returns a live, non-empty document or nil. Store errors degrade to a miss.
func (c *TieredVideoCache) readPersistent(ctx context.Context, id string) *model.CacheDocument {
	if c.store == nil {
		return nil
	}
	storeCtx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()

	doc, err := c.store.GetDocument(storeCtx, id)
	if err != nil {
		metrics.StoreFailures.WithLabelValues("get").Inc()
		logger.GetLogger().WithField("error", err).Warn("Persistent cache read failed, treating as miss")
		return nil
	}
	if doc == nil || len(doc.Videos) == 0 {
		return nil
	}
	if doc.Expired(c.now()) {
		logger.GetLogger().WithField("expiresAt", doc.ExpiresAt).Debug("Persistent cache entry expired")
		return nil
	}
	return doc
}

func (c *TieredVideoCache) writePersistent(ctx context.Context, id string, videos []model.VideoResult) {
	if c.store == nil {
		return
	}
	storeCtx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()

	if err := c.store.PutDocument(storeCtx, id, videos, c.cfg.PersistentTTL); err != nil {
		metrics.StoreFailures.WithLabelValues("put").Inc()
		logger.GetLogger().WithField("error", err).Warn("Persistent cache write failed")
	}
}

// Flush empties the memory tier only.
func (c *TieredVideoCache) Flush() int {
	return c.memory.Flush()
}

func (c *TieredVideoCache) Stats() cache.Stats {
	return c.memory.Stats()
}

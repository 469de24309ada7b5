package usecase

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"world-vlog/domain/model"
	"world-vlog/domain/repository"
	"world-vlog/infrastructure/logger"
	"world-vlog/infrastructure/metrics"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultRandomCount = 10
	defaultPoolSize    = 300
	defaultPoolTTL     = 6 * time.Hour
)

type PoolConfig struct {
	TTL   time.Duration
	Size  int
	Score WeightedScore
}

type IRandomPoolUseCase interface {
	// RandomVideos samples count videos of mode without replacement, rebuilding the pool first when stale.
	RandomVideos(ctx context.Context, mode model.Mode, count int) []model.VideoResult
	// Rebuild forces a rebuild and returns the number of pooled videos.
	Rebuild(ctx context.Context) (int, error)
	Size() int
}

// RandomPool is the process-wide ranking of every cached video, partitioned by mode.
type RandomPool struct {
	store   repository.IVideoCache
	ratings IRatingUseCase
	cfg     PoolConfig
	now     func() time.Time
	group   singleflight.Group

	mu        sync.RWMutex
	byMode    map[model.Mode][]model.VideoResult
	size      int
	expiresAt time.Time
}

func NewRandomPool(store repository.IVideoCache, ratings IRatingUseCase, cfg PoolConfig) *RandomPool {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultPoolTTL
	}
	if cfg.Size <= 0 {
		cfg.Size = defaultPoolSize
	}
	if cfg.Score == (WeightedScore{}) {
		cfg.Score = WeightedScore{LikeWeight: 5, DislikeWeight: 10}
	}
	return &RandomPool{
		store:   store,
		ratings: ratings,
		cfg:     cfg,
		now:     time.Now,
		byMode:  map[model.Mode][]model.VideoResult{},
	}
}

func (p *RandomPool) RandomVideos(ctx context.Context, mode model.Mode, count int) []model.VideoResult {
	if count <= 0 {
		count = DefaultRandomCount
	}
	if p.stale() {
		if _, err := p.Rebuild(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Random pool rebuild failed, serving previous pool")
		}
	}

	p.mu.RLock()
	candidates := p.byMode[mode]
	picked := make([]model.VideoResult, 0, min(count, len(candidates)))
	for _, i := range rand.Perm(len(candidates)) {
		if len(picked) == count {
			break
		}
		picked = append(picked, candidates[i])
	}
	p.mu.RUnlock()
	return picked
}

func (p *RandomPool) stale() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.size == 0 || p.now().After(p.expiresAt)
}

// Rebuild scans every persisted document. Documents whose key cannot be decoded are skipped;
// a video found under several modes joins each of those partitions.
func (p *RandomPool) Rebuild(ctx context.Context) (int, error) {
	v, err, _ := p.group.Do("rebuild", func() (interface{}, error) {
		return p.rebuild(ctx)
	})
	if err != nil {
		metrics.PoolRebuilds.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.PoolRebuilds.WithLabelValues("ok").Inc()
	return v.(int), nil
}

func (p *RandomPool) rebuild(ctx context.Context) (int, error) {
	if p.store == nil {
		return 0, nil
	}
	started := p.now()

	var videos []model.VideoResult
	var docs, skipped int
	modes := map[string]map[model.Mode]struct{}{}
	err := p.store.ScanDocuments(ctx, func(doc *model.CacheDocument) {
		key, err := model.DecodeCacheKey(doc.ID)
		if err != nil {
			skipped++
			return
		}
		docs++
		mode := model.ParseMode(string(key.Mode))
		for _, v := range doc.Videos {
			set, ok := modes[v.ID]
			if !ok {
				set = map[model.Mode]struct{}{}
				modes[v.ID] = set
				videos = append(videos, v)
			}
			set[mode] = struct{}{}
		}
	})
	if err != nil {
		return 0, err
	}

	ranked := videos
	if p.ratings != nil {
		ranked = p.ratings.AttachAndSort(ctx, videos, p.cfg.Score.Score)
	}
	if len(ranked) > p.cfg.Size {
		ranked = ranked[:p.cfg.Size]
	}
	byMode := map[model.Mode][]model.VideoResult{}
	for _, v := range ranked {
		for mode := range modes[v.ID] {
			byMode[mode] = append(byMode[mode], v)
		}
	}

	p.mu.Lock()
	p.byMode = byMode
	p.size = len(ranked)
	p.expiresAt = p.now().Add(p.cfg.TTL)
	p.mu.Unlock()

	logger.GetLogger().
		WithField("documents", docs).
		WithField("skipped", skipped).
		WithField("pooled", len(ranked)).
		WithField("took", p.now().Sub(started).String()).
		Info("Rebuilt random pool")
	return len(ranked), nil
}

func (p *RandomPool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.size
}

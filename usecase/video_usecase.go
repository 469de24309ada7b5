package usecase

import (
	"context"
	"strings"

	"world-vlog/domain/dto"
	"world-vlog/domain/model"
	"world-vlog/infrastructure/logger"
)

// IVideoUseCase is the inbound query surface used by the map UI
type IVideoUseCase interface {
	QueryVideos(ctx context.Context, req dto.VideoQueryRequest) (*dto.VideoQueryResponse, error)
	FlushMemoryCache() int
	CacheStats() dto.CacheStats
}

// VideoConfig tunes the query facade.
type VideoConfig struct {
	CacheVersion int
	// PageSize is the minimum number of results searched for on a miss. The cache key does not carry
	// the requested count, so every miss caches at least this many and callers truncate.
	PageSize int
}

type VideoUseCase struct {
	cache        ITieredVideoCache
	orchestrator ISearchOrchestrator
	ratings      IRatingUseCase
	pool         IRandomPoolUseCase
	cfg          VideoConfig
}

func NewVideoUseCase(cache ITieredVideoCache, orchestrator ISearchOrchestrator, ratings IRatingUseCase, pool IRandomPoolUseCase, cfg VideoConfig) IVideoUseCase {
	cfg.PageSize = clampCount(cfg.PageSize)
	return &VideoUseCase{
		cache:        cache,
		orchestrator: orchestrator,
		ratings:      ratings,
		pool:         pool,
		cfg:          cfg,
	}
}

// QueryVideos serves a place query through the cache tiers and ranks the result by community score.
func (u *VideoUseCase) QueryVideos(ctx context.Context, req dto.VideoQueryRequest) (*dto.VideoQueryResponse, error) {
	place := strings.Join(strings.Fields(req.Place), " ")
	if place == "" {
		return nil, model.ErrInvalidQuery
	}
	mode := model.ParseMode(string(req.Mode))
	count := clampCount(req.MaxResults)
	key := model.NewCacheKey(u.cfg.CacheVersion, place, req.RegionCode, mode, req.LocalKeywords)
	fetchCount := max(count, u.cfg.PageSize)

	videos, source, err := u.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]model.VideoResult, error) {
		return u.orchestrator.Search(ctx, SearchRequest{
			Place:         place,
			Mode:          mode,
			RegionCode:    key.Region,
			LocalKeywords: key.Keywords,
			Count:         fetchCount,
		})
	})
	if err != nil {
		logger.GetLogger().WithField("place", place).WithField("mode", mode).WithField("error", err).Error("Error while querying videos")
		return nil, err
	}

	if len(videos) > count {
		videos = videos[:count]
	}
	if u.ratings != nil {
		videos = u.ratings.AttachAndSort(ctx, videos, SimpleScore)
	}
	return &dto.VideoQueryResponse{Videos: videos, Source: source}, nil
}

func (u *VideoUseCase) FlushMemoryCache() int {
	n := u.cache.Flush()
	logger.GetLogger().WithField("entries", n).Info("Flushed memory cache")
	return n
}

func (u *VideoUseCase) CacheStats() dto.CacheStats {
	s := u.cache.Stats()
	stats := dto.CacheStats{
		Entries:   s.Entries,
		Capacity:  s.Capacity,
		Hits:      s.Hits,
		Misses:    s.Misses,
		Evictions: s.Evictions,
	}
	if u.pool != nil {
		stats.PoolSize = u.pool.Size()
	}
	return stats
}

package persistence

import (
	"context"
	"time"

	"world-vlog/domain/model"
	"world-vlog/domain/repository"
	"world-vlog/infrastructure/logger"

	"github.com/sony/gobreaker"
)

// BreakerVideoCache stops calling a failing persistent store until the breaker half-opens.
type BreakerVideoCache struct {
	inner repository.IVideoCache
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerVideoCache trips after maxFailures consecutive errors and retries after openTimeout.
func NewBreakerVideoCache(inner repository.IVideoCache, name string, maxFailures uint32, openTimeout time.Duration) repository.IVideoCache {
	if maxFailures == 0 {
		maxFailures = 5
	}
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.GetLogger().
				WithField("breaker", name).
				WithField("from", from.String()).
				WithField("to", to.String()).
				Warn("Persistent cache breaker changed state")
		},
	}
	return &BreakerVideoCache{inner: inner, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *BreakerVideoCache) GetDocument(ctx context.Context, id string) (*model.CacheDocument, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.GetDocument(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	doc, _ := res.(*model.CacheDocument)
	return doc, nil
}

func (b *BreakerVideoCache) PutDocument(ctx context.Context, id string, videos []model.VideoResult, ttl time.Duration) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.PutDocument(ctx, id, videos, ttl)
	})
	return err
}

func (b *BreakerVideoCache) ScanDocuments(ctx context.Context, fn func(doc *model.CacheDocument)) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.ScanDocuments(ctx, fn)
	})
	return err
}

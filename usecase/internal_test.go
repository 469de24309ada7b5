package usecase

import (
	"context"
	"testing"
	"time"

	"world-vlog/domain/model"

	"github.com/stretchr/testify/assert"
)

type scanStore struct {
	scans int
	docs  []*model.CacheDocument
}

func (s *scanStore) GetDocument(context.Context, string) (*model.CacheDocument, error) {
	return nil, nil
}

func (s *scanStore) PutDocument(context.Context, string, []model.VideoResult, time.Duration) error {
	return nil
}

func (s *scanStore) ScanDocuments(_ context.Context, fn func(doc *model.CacheDocument)) error {
	s.scans++
	for _, d := range s.docs {
		fn(d)
	}
	return nil
}

func TestRandomPool_RebuildsAfterTTL(t *testing.T) {
	store := &scanStore{docs: []*model.CacheDocument{{
		ID:     model.NewCacheKey(3, "Kyoto", "JP", model.ModeVlog, nil).ID(),
		Videos: []model.VideoResult{{ID: "a"}},
	}}}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pool := NewRandomPool(store, nil, PoolConfig{TTL: time.Hour})
	pool.now = func() time.Time { return now }

	pool.RandomVideos(context.Background(), model.ModeVlog, 1)
	now = now.Add(59 * time.Minute)
	pool.RandomVideos(context.Background(), model.ModeVlog, 1)
	assert.Equal(t, 1, store.scans)

	now = now.Add(2 * time.Minute)
	got := pool.RandomVideos(context.Background(), model.ModeVlog, 1)
	assert.Equal(t, 2, store.scans)
	assert.Len(t, got, 1)
}

func TestRandomPool_ExpiredDocumentsStillPooled(t *testing.T) {
	store := &scanStore{docs: []*model.CacheDocument{{
		ID:        model.NewCacheKey(3, "Kyoto", "JP", model.ModeCamp, nil).ID(),
		Videos:    []model.VideoResult{{ID: "old"}},
		ExpiresAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	}}}
	pool := NewRandomPool(store, nil, PoolConfig{})
	n, err := pool.Rebuild(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTierPageSize(t *testing.T) {
	assert.Equal(t, 10, tierPageSize(1))
	assert.Equal(t, 12, tierPageSize(8))
	assert.Equal(t, 50, tierPageSize(50))
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, DefaultResultCount, clampCount(0))
	assert.Equal(t, DefaultResultCount, clampCount(-3))
	assert.Equal(t, 20, clampCount(20))
	assert.Equal(t, MaxResultCount, clampCount(99))
}

func TestAccumulatorFirstOccurrenceWins(t *testing.T) {
	acc := newAccumulator()
	assert.Equal(t, 2, acc.add([]model.VideoResult{{ID: "a", Title: "first"}, {ID: "b"}}))
	assert.Equal(t, 1, acc.add([]model.VideoResult{{ID: "a", Title: "second"}, {ID: "c"}}))
	got := acc.take(10)
	assert.Equal(t, "first", got[0].Title)
	assert.Len(t, acc.take(2), 2)
	assert.NotNil(t, newAccumulator().take(3))
}

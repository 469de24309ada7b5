package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"world-vlog/domain/model"
	"world-vlog/infrastructure/cache"
	"world-vlog/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var kyotoKey = model.NewCacheKey(3, "Kyoto", "JP", model.ModeVlog, []string{"京都 散歩 vlog"})

func fetchOf(videos []model.VideoResult, calls *int32) usecase.Fetcher {
	return func(context.Context) ([]model.VideoResult, error) {
		atomic.AddInt32(calls, 1)
		return videos, nil
	}
}

func TestTieredVideoCache_MissThenMemoryHit(t *testing.T) {
	store := new(MockVideoCache)
	store.On("GetDocument", mock.Anything, kyotoKey.ID()).Return(nil, nil).Once()
	store.On("PutDocument", mock.Anything, kyotoKey.ID(), results("a", "b"), 7*24*time.Hour).Return(nil).Once()

	c := usecase.NewTieredVideoCache(cache.NewMemoryCache(10, time.Hour), store, usecase.CacheConfig{})
	var calls int32

	got, source, err := c.GetOrFetch(context.Background(), kyotoKey, fetchOf(results("a", "b"), &calls))
	require.NoError(t, err)
	assert.Equal(t, model.ProvenanceMiss, source)
	assert.Equal(t, []string{"a", "b"}, ids(got))

	got, source, err = c.GetOrFetch(context.Background(), kyotoKey, fetchOf(results("z"), &calls))
	require.NoError(t, err)
	assert.Equal(t, model.ProvenanceMemory, source)
	assert.Equal(t, []string{"a", "b"}, ids(got))
	assert.Equal(t, int32(1), calls)
	store.AssertExpectations(t)
}

func TestTieredVideoCache_PersistentHitWarmsMemory(t *testing.T) {
	store := new(MockVideoCache)
	doc := &model.CacheDocument{ID: kyotoKey.ID(), Videos: results("p1", "p2"), ExpiresAt: time.Now().Add(time.Hour)}
	store.On("GetDocument", mock.Anything, kyotoKey.ID()).Return(doc, nil).Once()

	memory := cache.NewMemoryCache(10, time.Hour)
	c := usecase.NewTieredVideoCache(memory, store, usecase.CacheConfig{})
	var calls int32

	got, source, err := c.GetOrFetch(context.Background(), kyotoKey, fetchOf(results("z"), &calls))
	require.NoError(t, err)
	assert.Equal(t, model.ProvenancePersistent, source)
	assert.Equal(t, []string{"p1", "p2"}, ids(got))
	assert.Equal(t, int32(0), calls)
	assert.Equal(t, 1, memory.Len())

	_, source, err = c.GetOrFetch(context.Background(), kyotoKey, fetchOf(results("z"), &calls))
	require.NoError(t, err)
	assert.Equal(t, model.ProvenanceMemory, source)
	store.AssertNotCalled(t, "PutDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTieredVideoCache_ExpiredPersistentDocumentIsMiss(t *testing.T) {
	store := new(MockVideoCache)
	doc := &model.CacheDocument{ID: kyotoKey.ID(), Videos: results("old"), ExpiresAt: time.Now().Add(-time.Minute)}
	store.On("GetDocument", mock.Anything, kyotoKey.ID()).Return(doc, nil).Once()
	store.On("PutDocument", mock.Anything, kyotoKey.ID(), results("new"), time.Hour).Return(nil).Once()

	c := usecase.NewTieredVideoCache(cache.NewMemoryCache(10, time.Hour), store, usecase.CacheConfig{PersistentTTL: time.Hour})
	var calls int32

	got, source, err := c.GetOrFetch(context.Background(), kyotoKey, fetchOf(results("new"), &calls))
	require.NoError(t, err)
	assert.Equal(t, model.ProvenanceMiss, source)
	assert.Equal(t, []string{"new"}, ids(got))
	store.AssertExpectations(t)
}

func TestTieredVideoCache_EmptyResultsAreNotCached(t *testing.T) {
	store := new(MockVideoCache)
	store.On("GetDocument", mock.Anything, mock.Anything).Return(nil, nil)

	memory := cache.NewMemoryCache(10, time.Hour)
	c := usecase.NewTieredVideoCache(memory, store, usecase.CacheConfig{})
	var calls int32

	for i := 0; i < 2; i++ {
		got, source, err := c.GetOrFetch(context.Background(), kyotoKey, fetchOf(nil, &calls))
		require.NoError(t, err)
		assert.Equal(t, model.ProvenanceMiss, source)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Equal(t, int32(2), calls)
	assert.Equal(t, 0, memory.Len())
	store.AssertNotCalled(t, "PutDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTieredVideoCache_StoreFailuresDegrade(t *testing.T) {
	store := new(MockVideoCache)
	store.On("GetDocument", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	store.On("PutDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	memory := cache.NewMemoryCache(10, time.Hour)
	c := usecase.NewTieredVideoCache(memory, store, usecase.CacheConfig{})
	var calls int32

	got, source, err := c.GetOrFetch(context.Background(), kyotoKey, fetchOf(results("a"), &calls))
	require.NoError(t, err)
	assert.Equal(t, model.ProvenanceMiss, source)
	assert.Equal(t, []string{"a"}, ids(got))
	// the memory tier still gets the fresh result
	assert.Equal(t, 1, memory.Len())
}

func TestTieredVideoCache_FetchErrorPropagates(t *testing.T) {
	c := usecase.NewTieredVideoCache(cache.NewMemoryCache(10, time.Hour), nil, usecase.CacheConfig{})
	_, _, err := c.GetOrFetch(context.Background(), kyotoKey, func(context.Context) ([]model.VideoResult, error) {
		return nil, model.ErrQuotaExceeded
	})
	assert.ErrorIs(t, err, model.ErrQuotaExceeded)
}

func TestTieredVideoCache_ReturnsCopies(t *testing.T) {
	c := usecase.NewTieredVideoCache(cache.NewMemoryCache(10, time.Hour), nil, usecase.CacheConfig{})
	var calls int32

	got, _, err := c.GetOrFetch(context.Background(), kyotoKey, fetchOf(results("a"), &calls))
	require.NoError(t, err)
	got[0].Title = "mutated"
	got[0].Ratings = &model.RatingSummary{Likes: 9}

	again, _, err := c.GetOrFetch(context.Background(), kyotoKey, fetchOf(nil, &calls))
	require.NoError(t, err)
	assert.Equal(t, "video a", again[0].Title)
	assert.Nil(t, again[0].Ratings)
}

func TestTieredVideoCache_ConcurrentMissesFetchOnce(t *testing.T) {
	c := usecase.NewTieredVideoCache(cache.NewMemoryCache(10, time.Hour), nil, usecase.CacheConfig{})

	var calls int32
	release := make(chan struct{})
	fetch := func(context.Context) ([]model.VideoResult, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return results("a", "b"), nil
	}

	const workers = 8
	var wg sync.WaitGroup
	var started sync.WaitGroup
	started.Add(workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			got, _, err := c.GetOrFetch(context.Background(), kyotoKey, fetch)
			if err == nil && len(got) != 2 {
				err = errors.New("short result")
			}
			errs <- err
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTieredVideoCache_FirstCallerCancelDoesNotFailOthers(t *testing.T) {
	store := new(MockVideoCache)
	store.On("GetDocument", mock.Anything, kyotoKey.ID()).Return(nil, nil).Once()
	store.On("PutDocument", mock.Anything, kyotoKey.ID(), results("a", "b"), 7*24*time.Hour).Return(nil).Once()

	memory := cache.NewMemoryCache(10, time.Hour)
	c := usecase.NewTieredVideoCache(memory, store, usecase.CacheConfig{})

	entered := make(chan struct{})
	release := make(chan struct{})
	var fetchErr atomic.Value
	fetch := func(ctx context.Context) ([]model.VideoResult, error) {
		close(entered)
		<-release
		if err := ctx.Err(); err != nil {
			fetchErr.Store(err)
			return nil, err
		}
		return results("a", "b"), nil
	}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, _, err := c.GetOrFetch(firstCtx, kyotoKey, fetch)
		firstDone <- err
	}()
	<-entered

	secondDone := make(chan []model.VideoResult, 1)
	secondErr := make(chan error, 1)
	go func() {
		got, _, err := c.GetOrFetch(context.Background(), kyotoKey, fetch)
		secondErr <- err
		secondDone <- got
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-firstDone:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared lookup")
	}

	close(release)
	require.NoError(t, <-secondErr)
	assert.Equal(t, []string{"a", "b"}, ids(<-secondDone))
	assert.Nil(t, fetchErr.Load())

	// the abandoned lookup still completed and warmed both tiers
	assert.Equal(t, 1, memory.Len())
	store.AssertExpectations(t)
}

func TestTieredVideoCache_FlushAndStats(t *testing.T) {
	c := usecase.NewTieredVideoCache(cache.NewMemoryCache(10, time.Hour), nil, usecase.CacheConfig{})
	var calls int32
	_, _, _ = c.GetOrFetch(context.Background(), kyotoKey, fetchOf(results("a"), &calls))
	_, _, _ = c.GetOrFetch(context.Background(), kyotoKey, fetchOf(results("a"), &calls))

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 10, stats.Capacity)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	assert.Equal(t, 1, c.Flush())
	assert.Equal(t, 0, c.Stats().Entries)
}

package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"world-vlog/domain/dto"
	"world-vlog/domain/model"

	"github.com/stretchr/testify/mock"
)

type MockVideoSearch struct {
	mock.Mock
}

func (m *MockVideoSearch) SearchVideos(ctx context.Context, req *dto.VideoSearchRequest) ([]model.VideoCandidate, error) {
	args := m.Called(ctx, req)
	var out []model.VideoCandidate
	if v := args.Get(0); v != nil {
		out = v.([]model.VideoCandidate)
	}
	return out, args.Error(1)
}

type MockVideoCache struct {
	mock.Mock
}

func (m *MockVideoCache) GetDocument(ctx context.Context, id string) (*model.CacheDocument, error) {
	args := m.Called(ctx, id)
	var doc *model.CacheDocument
	if v := args.Get(0); v != nil {
		doc = v.(*model.CacheDocument)
	}
	return doc, args.Error(1)
}

func (m *MockVideoCache) PutDocument(ctx context.Context, id string, videos []model.VideoResult, ttl time.Duration) error {
	args := m.Called(ctx, id, videos, ttl)
	return args.Error(0)
}

func (m *MockVideoCache) ScanDocuments(ctx context.Context, fn func(doc *model.CacheDocument)) error {
	args := m.Called(ctx)
	if docs, ok := args.Get(0).([]*model.CacheDocument); ok {
		for _, d := range docs {
			fn(d)
		}
	}
	return args.Error(1)
}

type MockRatingEvents struct {
	mock.Mock
}

func (m *MockRatingEvents) PublishRating(ctx context.Context, event model.RatingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// memoryRatings is an IRating with atomic increments, mirroring what the real stores guarantee.
type memoryRatings struct {
	mu      sync.Mutex
	records map[string]model.RatingRecord
	batches [][]string
	getErr  error
	incrErr error
}

func newMemoryRatings() *memoryRatings {
	return &memoryRatings{records: map[string]model.RatingRecord{}}
}

func (r *memoryRatings) Increment(_ context.Context, videoID string, good bool) error {
	if r.incrErr != nil {
		return r.incrErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.records[videoID]
	rec.VideoID = videoID
	if good {
		rec.Likes++
	} else {
		rec.Dislikes++
	}
	r.records[videoID] = rec
	return nil
}

func (r *memoryRatings) GetRatings(_ context.Context, ids []string) (map[string]model.RatingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, append([]string(nil), ids...))
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := map[string]model.RatingRecord{}
	for _, id := range ids {
		if rec, ok := r.records[id]; ok {
			out[id] = rec
		}
	}
	return out, nil
}

func (r *memoryRatings) set(id string, likes, dislikes int64) {
	r.mu.Lock()
	r.records[id] = model.RatingRecord{VideoID: id, Likes: likes, Dislikes: dislikes}
	r.mu.Unlock()
}

func candidate(id, title string, views string, duration int) model.VideoCandidate {
	return model.VideoCandidate{
		ID:              id,
		Title:           title,
		ChannelTitle:    "channel",
		ViewCount:       views,
		DurationSeconds: duration,
	}
}

func results(ids ...string) []model.VideoResult {
	out := make([]model.VideoResult, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.VideoResult{ID: id, Title: fmt.Sprintf("video %s", id)})
	}
	return out
}

func ids(videos []model.VideoResult) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.ID)
	}
	return out
}

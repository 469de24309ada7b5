package repository

import (
	"context"

	"world-vlog/domain/model"
)

// IRating stores community like/dislike counters.
type IRating interface {
	// Increment atomically bumps likes (good) or dislikes, creating the record when missing.
	Increment(ctx context.Context, videoID string, good bool) error
	// GetRatings returns the records that exist for ids. Callers keep batches within the backend limit.
	GetRatings(ctx context.Context, ids []string) (map[string]model.RatingRecord, error)
}

// IRatingEvents receives a notification after every recorded rating.
type IRatingEvents interface {
	PublishRating(ctx context.Context, event model.RatingEvent) error
}

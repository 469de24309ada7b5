package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"world-vlog/domain/model"
	"world-vlog/domain/repository"
	"world-vlog/infrastructure/logger"
	"world-vlog/infrastructure/metrics"
	"world-vlog/infrastructure/utils"
)

const defaultRatingBatchSize = 30

// ScoreFunc turns rating counters into a sortable score.
type ScoreFunc func(likes, dislikes int64) int64

// SimpleScore ranks per-query results.
func SimpleScore(likes, dislikes int64) int64 {
	return likes - dislikes
}

// WeightedScore ranks the random discovery pool.
type WeightedScore struct {
	LikeWeight    int64
	DislikeWeight int64
}

func (w WeightedScore) Score(likes, dislikes int64) int64 {
	return likes*w.LikeWeight - dislikes*w.DislikeWeight
}

type RatingConfig struct {
	BatchSize int
}

type IRatingUseCase interface {
	RecordRating(ctx context.Context, videoID string, good bool) error
	AttachAndSort(ctx context.Context, videos []model.VideoResult, score ScoreFunc) []model.VideoResult
}

type RatingUseCase struct {
	repo      repository.IRating
	events    []repository.IRatingEvents
	batchSize int
	now       func() time.Time
}

// NewRatingUseCase wires the rating store and any number of event sinks (nil sinks are ignored).
func NewRatingUseCase(repo repository.IRating, cfg RatingConfig, events ...repository.IRatingEvents) IRatingUseCase {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultRatingBatchSize
	}
	sinks := make([]repository.IRatingEvents, 0, len(events))
	for _, e := range events {
		if e != nil {
			sinks = append(sinks, e)
		}
	}
	return &RatingUseCase{repo: repo, events: sinks, batchSize: batchSize, now: utils.GetCurrentTime}
}

// RecordRating atomically bumps the like or dislike counter, then notifies the event sinks.
func (u *RatingUseCase) RecordRating(ctx context.Context, videoID string, good bool) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return model.ErrInvalidRating
	}
	if u.repo == nil {
		return fmt.Errorf("rating store not configured")
	}
	if err := u.repo.Increment(ctx, videoID, good); err != nil {
		logger.GetLogger().WithField("videoId", videoID).WithField("error", err).Error("Error while recording rating")
		return err
	}

	verdict := "bad"
	if good {
		verdict = "good"
	}
	metrics.RatingSubmissions.WithLabelValues(verdict).Inc()

	event := model.RatingEvent{VideoID: videoID, IsGood: good, RecordedAt: u.now()}
	for _, sink := range u.events {
		if err := sink.PublishRating(ctx, event); err != nil {
			logger.GetLogger().WithField("videoId", videoID).WithField("error", err).Warn("Rating event not published")
		}
	}
	return nil
}

// AttachAndSort returns a new list with ratings attached, stably sorted by descending score.
// If the rating store fails the input order is kept and no ratings are attached.
func (u *RatingUseCase) AttachAndSort(ctx context.Context, videos []model.VideoResult, score ScoreFunc) []model.VideoResult {
	out := model.CloneVideos(videos)
	if len(out) == 0 || u.repo == nil {
		return out
	}
	if score == nil {
		score = SimpleScore
	}

	records, err := u.fetchRatings(ctx, uniqueIDs(out))
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Ratings unavailable, returning unrated results")
		return out
	}

	for i := range out {
		rec := records[out[i].ID]
		out[i].Ratings = &model.RatingSummary{
			Likes:    rec.Likes,
			Dislikes: rec.Dislikes,
			Score:    score(rec.Likes, rec.Dislikes),
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Ratings.Score > out[b].Ratings.Score
	})
	return out
}

// fetchRatings looks ids up in store-sized batches and merges the results.
func (u *RatingUseCase) fetchRatings(ctx context.Context, ids []string) (map[string]model.RatingRecord, error) {
	records := make(map[string]model.RatingRecord, len(ids))
	for start := 0; start < len(ids); start += u.batchSize {
		end := start + u.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch, err := u.repo.GetRatings(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for id, rec := range batch {
			records[id] = rec
		}
	}
	return records, nil
}

func uniqueIDs(videos []model.VideoResult) []string {
	seen := make(map[string]struct{}, len(videos))
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		ids = append(ids, v.ID)
	}
	return ids
}

package usecase

import (
	"context"
	"errors"
	"fmt"

	"world-vlog/domain/dto"
	"world-vlog/domain/model"
	"world-vlog/domain/repository"
	"world-vlog/infrastructure/logger"
	"world-vlog/infrastructure/metrics"
)

const (
	DefaultResultCount = 8
	MaxResultCount     = 50
	minTierPageSize    = 10
	maxTierPageSize    = 50
)

// TierState is the outcome of one query tier.
type TierState int

const (
	// TierPending is the state of a tier whose provider call has not returned yet.
	TierPending TierState = iota
	// TierAccepted means enough results were collected; remaining tiers are skipped.
	TierAccepted
	// TierContinue moves on to the next tier.
	TierContinue
	// TierAbort stops the whole search; the provider refused the call.
	TierAbort
)

func (s TierState) String() string {
	switch s {
	case TierAccepted:
		return "accepted"
	case TierContinue:
		return "continue"
	case TierAbort:
		return "abort"
	default:
		return "pending"
	}
}

// SearchRequest is what the orchestrator needs to run all tiers for one place.
type SearchRequest struct {
	Place         string
	Mode          model.Mode
	RegionCode    string
	LocalKeywords []string
	Count         int
}

// TierResult records what a single tier did.
type TierResult struct {
	Index    int
	Query    string
	State    TierState
	Accepted int
	Err      error
}

type ISearchOrchestrator interface {
	Search(ctx context.Context, req SearchRequest) ([]model.VideoResult, error)
}

// SearchOrchestrator runs query tiers one after another and stops as soon as it has enough results.
type SearchOrchestrator struct {
	search repository.IVideoSearch
	filter *RelevanceFilter
}

// NewSearchOrchestrator accepts a nil search client; searches then fail with model.ErrMissingCredential.
func NewSearchOrchestrator(search repository.IVideoSearch, filter *RelevanceFilter) ISearchOrchestrator {
	return &SearchOrchestrator{search: search, filter: filter}
}

func (o *SearchOrchestrator) Search(ctx context.Context, req SearchRequest) ([]model.VideoResult, error) {
	if o.search == nil {
		return nil, model.ErrMissingCredential
	}
	count := clampCount(req.Count)
	queries := BuildSearchQueries(req.Place, req.Mode, req.LocalKeywords)
	if len(queries) == 0 {
		return nil, model.ErrInvalidQuery
	}

	acc := newAccumulator()
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrSearchFailed, err)
		}

		res := o.runTier(ctx, i, q, req, count, acc)
		metrics.SearchTiers.WithLabelValues(res.State.String()).Inc()
		entry := logger.GetLogger().
			WithField("tier", res.Index+1).
			WithField("query", q).
			WithField("state", res.State.String()).
			WithField("accepted", res.Accepted).
			WithField("total", acc.len())
		if res.Err != nil {
			entry = entry.WithField("error", res.Err)
		}
		entry.Info("Search tier finished")

		switch res.State {
		case TierAbort:
			metrics.ProviderQuotaErrors.Inc()
			return nil, res.Err
		case TierAccepted:
			return acc.take(count), nil
		}
	}
	return acc.take(count), nil
}

// runTier executes one query and decides the next state.
func (o *SearchOrchestrator) runTier(ctx context.Context, index int, query string, req SearchRequest, count int, acc *accumulator) TierResult {
	res := TierResult{Index: index, Query: query, State: TierPending}
	logger.GetLogger().
		WithField("tier", res.Index+1).
		WithField("query", query).
		WithField("state", res.State.String()).
		Debug("Running search tier")

	candidates, err := o.search.SearchVideos(ctx, &dto.VideoSearchRequest{
		Query:      query,
		RegionCode: req.RegionCode,
		MaxResults: int64(tierPageSize(count)),
	})
	if err != nil {
		res.Err = err
		if errors.Is(err, model.ErrQuotaExceeded) {
			res.State = TierAbort
		} else {
			res.State = TierContinue
		}
		return res
	}

	res.Accepted = acc.add(o.filter.Filter(candidates, req.Place, req.LocalKeywords))
	if acc.len() >= count {
		res.State = TierAccepted
	} else {
		res.State = TierContinue
	}
	return res
}

// tierPageSize over-fetches by half to make up for filtered candidates.
func tierPageSize(count int) int {
	n := (count*3 + 1) / 2
	if n < minTierPageSize {
		return minTierPageSize
	}
	if n > maxTierPageSize {
		return maxTierPageSize
	}
	return n
}

func clampCount(count int) int {
	if count <= 0 {
		return DefaultResultCount
	}
	if count > MaxResultCount {
		return MaxResultCount
	}
	return count
}

// accumulator merges tier results, first occurrence of an id wins.
type accumulator struct {
	videos []model.VideoResult
}

func newAccumulator() *accumulator {
	return &accumulator{}
}

func (a *accumulator) add(videos []model.VideoResult) int {
	before := len(a.videos)
	a.videos = model.DedupeVideos(append(a.videos, videos...))
	return len(a.videos) - before
}

func (a *accumulator) len() int { return len(a.videos) }

func (a *accumulator) take(n int) []model.VideoResult {
	if len(a.videos) > n {
		return a.videos[:n]
	}
	if a.videos == nil {
		return []model.VideoResult{}
	}
	return a.videos
}

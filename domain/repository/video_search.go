package repository

import (
	"context"

	"world-vlog/domain/dto"
	"world-vlog/domain/model"
)

// IVideoSearch runs a single tier query against the external video provider.
type IVideoSearch interface {
	// SearchVideos returns raw candidates merged with their detail metadata.
	// Quota or authorization refusals wrap model.ErrQuotaExceeded, other failures wrap model.ErrSearchFailed.
	SearchVideos(ctx context.Context, req *dto.VideoSearchRequest) ([]model.VideoCandidate, error)
}

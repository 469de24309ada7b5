package repository

import (
	"context"
	"time"

	"world-vlog/domain/model"
)

// IVideoCache is the persistent document tier of the search result cache.
type IVideoCache interface {
	// GetDocument returns the stored document for id, or nil when absent. Expiry is checked by the caller.
	GetDocument(ctx context.Context, id string) (*model.CacheDocument, error)
	// PutDocument overwrites the whole document for id with a TTL from now.
	PutDocument(ctx context.Context, id string, videos []model.VideoResult, ttl time.Duration) error
	// ScanDocuments walks every stored document. Undecodable rows are skipped by the implementation.
	ScanDocuments(ctx context.Context, fn func(doc *model.CacheDocument)) error
}

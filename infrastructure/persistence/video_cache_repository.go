package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"world-vlog/domain/model"
	"world-vlog/domain/repository"
	"world-vlog/infrastructure/logger"
)

// EnsureVideoCacheSchema creates the table for cached search results if not exists
func EnsureVideoCacheSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS youtube_search_cache (
        cache_id TEXT PRIMARY KEY,
        videos JSONB NOT NULL,
        cached_at TIMESTAMPTZ NOT NULL,
        expires_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create youtube_search_cache table: %w", err)
	}

	// Helpful index to purge or check expiry
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_youtube_search_cache_expires_at ON youtube_search_cache(expires_at)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_youtube_search_cache_expires_at")
	}
	return nil
}

// VideoCacheRepository stores one row per cache key with the result list as JSONB
type VideoCacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewVideoCacheRepository(db *sql.DB) repository.IVideoCache {
	return &VideoCacheRepository{db: db, now: time.Now}
}

func (r *VideoCacheRepository) GetDocument(ctx context.Context, id string) (*model.CacheDocument, error) {
	row := r.db.QueryRowContext(ctx, `SELECT videos, cached_at, expires_at FROM youtube_search_cache WHERE cache_id=$1`, id)
	var raw []byte
	doc := &model.CacheDocument{ID: id}
	if err := row.Scan(&raw, &doc.CachedAt, &doc.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &doc.Videos); err != nil {
		return nil, fmt.Errorf("decode cached videos %s: %w", id, err)
	}
	return doc, nil
}

// PutDocument overwrites the row for id with a TTL from now
func (r *VideoCacheRepository) PutDocument(ctx context.Context, id string, videos []model.VideoResult, ttl time.Duration) error {
	raw, err := json.Marshal(model.CloneVideos(videos))
	if err != nil {
		return err
	}
	now := r.now().UTC()
	q := `INSERT INTO youtube_search_cache(cache_id, videos, cached_at, expires_at)
          VALUES ($1,$2,$3,$4)
          ON CONFLICT (cache_id) DO UPDATE SET videos=EXCLUDED.videos, cached_at=EXCLUDED.cached_at, expires_at=EXCLUDED.expires_at`
	_, err = r.db.ExecContext(ctx, q, id, raw, now, now.Add(ttl))
	return err
}

func (r *VideoCacheRepository) ScanDocuments(ctx context.Context, fn func(doc *model.CacheDocument)) error {
	rows, err := r.db.QueryContext(ctx, `SELECT cache_id, videos, cached_at, expires_at FROM youtube_search_cache`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var raw []byte
		doc := &model.CacheDocument{}
		if err := rows.Scan(&doc.ID, &raw, &doc.CachedAt, &doc.ExpiresAt); err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &doc.Videos); err != nil {
			logger.GetLogger().WithField("cacheId", doc.ID).WithField("error", err).Warn("Skipping undecodable cache row")
			continue
		}
		fn(doc)
	}
	return rows.Err()
}

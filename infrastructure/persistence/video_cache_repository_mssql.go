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

// EnsureVideoCacheSchemaMSSQL creates the cache table on MSSQL if not exists
func EnsureVideoCacheSchemaMSSQL(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.youtube_search_cache') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.youtube_search_cache (
        cache_id NVARCHAR(512) NOT NULL PRIMARY KEY,
        videos NVARCHAR(MAX) NOT NULL,
        cached_at DATETIMEOFFSET NOT NULL,
        expires_at DATETIMEOFFSET NOT NULL
    );
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create youtube_search_cache table (mssql): %w", err)
	}
	if _, err := db.Exec(`IF NOT EXISTS (SELECT * FROM sys.indexes WHERE name = 'idx_youtube_search_cache_expires_at' AND object_id = OBJECT_ID('dbo.youtube_search_cache'))
CREATE INDEX idx_youtube_search_cache_expires_at ON dbo.youtube_search_cache(expires_at)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_youtube_search_cache_expires_at (mssql)")
	}
	return nil
}

// VideoCacheRepositoryMSSQL implements IVideoCache on Azure SQL
type VideoCacheRepositoryMSSQL struct {
	db  *sql.DB
	now func() time.Time
}

func NewVideoCacheRepositoryMSSQL(db *sql.DB) repository.IVideoCache {
	return &VideoCacheRepositoryMSSQL{db: db, now: time.Now}
}

func (r *VideoCacheRepositoryMSSQL) GetDocument(ctx context.Context, id string) (*model.CacheDocument, error) {
	row := r.db.QueryRowContext(ctx, `SELECT videos, cached_at, expires_at FROM dbo.youtube_search_cache WHERE cache_id=@p1`, id)
	var raw string
	doc := &model.CacheDocument{ID: id}
	if err := row.Scan(&raw, &doc.CachedAt, &doc.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &doc.Videos); err != nil {
		return nil, fmt.Errorf("decode cached videos %s: %w", id, err)
	}
	return doc, nil
}

func (r *VideoCacheRepositoryMSSQL) PutDocument(ctx context.Context, id string, videos []model.VideoResult, ttl time.Duration) error {
	raw, err := json.Marshal(model.CloneVideos(videos))
	if err != nil {
		return err
	}
	now := r.now().UTC()
	q := `MERGE dbo.youtube_search_cache WITH (HOLDLOCK) AS target
USING (SELECT @p1 AS cache_id) AS src
ON (target.cache_id = src.cache_id)
WHEN MATCHED THEN UPDATE SET videos=@p2, cached_at=@p3, expires_at=@p4
WHEN NOT MATCHED THEN INSERT (cache_id, videos, cached_at, expires_at)
VALUES (@p1, @p2, @p3, @p4);`
	_, err = r.db.ExecContext(ctx, q, id, string(raw), now, now.Add(ttl))
	return err
}

func (r *VideoCacheRepositoryMSSQL) ScanDocuments(ctx context.Context, fn func(doc *model.CacheDocument)) error {
	rows, err := r.db.QueryContext(ctx, `SELECT cache_id, videos, cached_at, expires_at FROM dbo.youtube_search_cache`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		doc := &model.CacheDocument{}
		if err := rows.Scan(&doc.ID, &raw, &doc.CachedAt, &doc.ExpiresAt); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(raw), &doc.Videos); err != nil {
			logger.GetLogger().WithField("cacheId", doc.ID).WithField("error", err).Warn("Skipping undecodable cache row")
			continue
		}
		fn(doc)
	}
	return rows.Err()
}

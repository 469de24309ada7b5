package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"world-vlog/domain/model"
	"world-vlog/domain/repository"
)

// EnsureRatingSchemaMSSQL creates dbo.video_ratings if not exists
func EnsureRatingSchemaMSSQL(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.video_ratings') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.video_ratings (
        video_id NVARCHAR(64) NOT NULL PRIMARY KEY,
        likes BIGINT NOT NULL DEFAULT 0,
        dislikes BIGINT NOT NULL DEFAULT 0,
        updated_at DATETIMEOFFSET NOT NULL
    );
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create video_ratings table (mssql): %w", err)
	}
	return nil
}

// RatingRepositoryMSSQL keeps rating counters on Azure SQL
type RatingRepositoryMSSQL struct {
	db *sql.DB
}

func NewRatingRepositoryMSSQL(db *sql.DB) repository.IRating {
	return &RatingRepositoryMSSQL{db: db}
}

// Increment relies on HOLDLOCK so two first ratings for the same id cannot both insert
func (r *RatingRepositoryMSSQL) Increment(ctx context.Context, videoID string, good bool) error {
	likes, dislikes := ratingDelta(good)
	q := `MERGE dbo.video_ratings WITH (HOLDLOCK) AS target
USING (SELECT @p1 AS video_id) AS src
ON (target.video_id = src.video_id)
WHEN MATCHED THEN UPDATE SET likes = target.likes + @p2, dislikes = target.dislikes + @p3, updated_at = @p4
WHEN NOT MATCHED THEN INSERT (video_id, likes, dislikes, updated_at)
VALUES (@p1, @p2, @p3, @p4);`
	_, err := r.db.ExecContext(ctx, q, videoID, likes, dislikes, time.Now().UTC())
	return err
}

func (r *RatingRepositoryMSSQL) GetRatings(ctx context.Context, ids []string) (map[string]model.RatingRecord, error) {
	out := make(map[string]model.RatingRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
		args[i] = id
	}
	q := `SELECT video_id, likes, dislikes FROM dbo.video_ratings WHERE video_id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rec model.RatingRecord
		if err := rows.Scan(&rec.VideoID, &rec.Likes, &rec.Dislikes); err != nil {
			return nil, err
		}
		out[rec.VideoID] = rec
	}
	return out, rows.Err()
}

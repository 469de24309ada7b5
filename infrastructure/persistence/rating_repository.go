package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"world-vlog/domain/model"
	"world-vlog/domain/repository"

	"github.com/lib/pq"
)

// EnsureRatingSchema creates the video_ratings table if not exists
func EnsureRatingSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS video_ratings (
        video_id TEXT PRIMARY KEY,
        likes BIGINT NOT NULL DEFAULT 0,
        dislikes BIGINT NOT NULL DEFAULT 0,
        updated_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create video_ratings table: %w", err)
	}
	return nil
}

// RatingRepository keeps rating counters in PostgreSQL
type RatingRepository struct {
	db *sql.DB
}

func NewRatingRepository(db *sql.DB) repository.IRating {
	return &RatingRepository{db: db}
}

// Increment adds to the stored counters in a single upsert statement
func (r *RatingRepository) Increment(ctx context.Context, videoID string, good bool) error {
	likes, dislikes := ratingDelta(good)
	q := `INSERT INTO video_ratings(video_id, likes, dislikes, updated_at)
          VALUES ($1,$2,$3,$4)
          ON CONFLICT (video_id) DO UPDATE SET likes = video_ratings.likes + EXCLUDED.likes, dislikes = video_ratings.dislikes + EXCLUDED.dislikes, updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, videoID, likes, dislikes, time.Now().UTC())
	return err
}

func (r *RatingRepository) GetRatings(ctx context.Context, ids []string) (map[string]model.RatingRecord, error) {
	out := make(map[string]model.RatingRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT video_id, likes, dislikes FROM video_ratings WHERE video_id = ANY($1)`, pq.Array(ids))
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

package persistence

import (
	"context"
	"strconv"

	"world-vlog/domain/model"
	"world-vlog/domain/repository"

	"github.com/redis/go-redis/v9"
)

const ratingKeyPrefix = "video_rating:"

// RatingRepositoryRedis keeps one hash per video with likes and dislikes fields
type RatingRepositoryRedis struct {
	client redis.UniversalClient
}

func NewRatingRepositoryRedis(client redis.UniversalClient) repository.IRating {
	return &RatingRepositoryRedis{client: client}
}

// Increment wraps both HINCRBYs in MULTI so the record is created with both fields
func (r *RatingRepositoryRedis) Increment(ctx context.Context, videoID string, good bool) error {
	likes, dislikes := ratingDelta(good)
	key := ratingKeyPrefix + videoID
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, "likes", likes)
		pipe.HIncrBy(ctx, key, "dislikes", dislikes)
		return nil
	})
	return err
}

func (r *RatingRepositoryRedis) GetRatings(ctx context.Context, ids []string) (map[string]model.RatingRecord, error) {
	out := make(map[string]model.RatingRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, ratingKeyPrefix+id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		out[ids[i]] = ratingFromHash(ids[i], fields)
	}
	return out, nil
}

func ratingFromHash(id string, fields map[string]string) model.RatingRecord {
	likes, _ := strconv.ParseInt(fields["likes"], 10, 64)
	dislikes, _ := strconv.ParseInt(fields["dislikes"], 10, 64)
	return model.RatingRecord{VideoID: id, Likes: likes, Dislikes: dislikes}
}

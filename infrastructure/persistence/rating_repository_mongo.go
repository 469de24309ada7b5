package persistence

import (
	"context"

	"world-vlog/domain/model"
	"world-vlog/domain/repository"
	"world-vlog/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const ratingCollection = "video_ratings"

// ratingCollection is the part of *mongo.Collection the rating repository needs.
type ratingCollection interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
	Find(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
}

// RatingRepositoryMongo keeps like/dislike counters keyed by video id
type RatingRepositoryMongo struct {
	collection ratingCollection
}

func NewRatingRepositoryMongo(client *mongo.Client, dbName string) repository.IRating {
	return &RatingRepositoryMongo{collection: client.Database(dbName).Collection(ratingCollection)}
}

// Increment uses an upserting $inc so concurrent raters never lose an update
func (r *RatingRepositoryMongo) Increment(ctx context.Context, videoID string, good bool) error {
	likes, dislikes := ratingDelta(good)
	_, err := r.collection.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: videoID}},
		bson.D{{Key: "$inc", Value: bson.D{
			{Key: "likes", Value: likes},
			{Key: "dislikes", Value: dislikes},
		}}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (r *RatingRepositoryMongo) GetRatings(ctx context.Context, ids []string) (map[string]model.RatingRecord, error) {
	out := make(map[string]model.RatingRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := r.collection.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)

	for cursor.Next(ctx) {
		var rec model.RatingRecord
		if err := cursor.Decode(&rec); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Skipping undecodable rating document")
			continue
		}
		out[rec.VideoID] = rec
	}
	return out, cursor.Err()
}

// ratingDelta is the (likes, dislikes) increment for one verdict.
func ratingDelta(good bool) (int64, int64) {
	if good {
		return 1, 0
	}
	return 0, 1
}

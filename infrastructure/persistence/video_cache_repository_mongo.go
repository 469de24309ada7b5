package persistence

import (
	"context"
	"errors"
	"time"

	"world-vlog/domain/model"
	"world-vlog/domain/repository"
	"world-vlog/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const videoCacheCollection = "youtube_cache"

// VideoCacheRepositoryMongo keeps one document per cache key in the youtube_cache collection
type VideoCacheRepositoryMongo struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewVideoCacheRepositoryMongo(client *mongo.Client, dbName string) repository.IVideoCache {
	return &VideoCacheRepositoryMongo{
		collection: client.Database(dbName).Collection(videoCacheCollection),
		now:        time.Now,
	}
}

func (r *VideoCacheRepositoryMongo) GetDocument(ctx context.Context, id string) (*model.CacheDocument, error) {
	var doc model.CacheDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// PutDocument replaces the whole document, creating it when missing
func (r *VideoCacheRepositoryMongo) PutDocument(ctx context.Context, id string, videos []model.VideoResult, ttl time.Duration) error {
	now := r.now().UTC()
	doc := model.CacheDocument{
		ID:        id,
		Videos:    model.CloneVideos(videos),
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	_, err := r.collection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *VideoCacheRepositoryMongo) ScanDocuments(ctx context.Context, fn func(doc *model.CacheDocument)) error {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)

	for cursor.Next(ctx) {
		var doc model.CacheDocument
		if err := cursor.Decode(&doc); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Skipping undecodable cache document")
			continue
		}
		fn(&doc)
	}
	return cursor.Err()
}

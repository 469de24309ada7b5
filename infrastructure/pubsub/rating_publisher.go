package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"world-vlog/domain/model"
	"world-vlog/domain/repository"
	"world-vlog/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// NewPubSub opens a Pub/Sub client for the configured project.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("pubsub project id is empty")
	}
	return pubsub.NewClient(ctx, projectID)
}

// RatingPublisher forwards recorded ratings to a Pub/Sub topic
type RatingPublisher struct {
	topic *pubsub.Topic
}

// NewRatingPublisher resolves topicName, creating the topic if it doesn't exist.
func NewRatingPublisher(ctx context.Context, client *pubsub.Client, topicName string) (repository.IRatingEvents, error) {
	topic := client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", topicName).Info("Topic doesn't exist - creating it")
		if topic, err = client.CreateTopic(ctx, topicName); err != nil {
			return nil, err
		}
	}
	return &RatingPublisher{topic: topic}, nil
}

func (p *RatingPublisher) PublishRating(ctx context.Context, event model.RatingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"videoId": event.VideoID,
			"verdict": verdict(event.IsGood),
		},
	}

	serverID, err := p.topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("server ID", serverID).WithField("videoId", event.VideoID).Debug("Rating event published")
	return nil
}

// Stop flushes pending messages.
func (p *RatingPublisher) Stop() {
	p.topic.Stop()
}

func verdict(good bool) string {
	if good {
		return "good"
	}
	return "bad"
}

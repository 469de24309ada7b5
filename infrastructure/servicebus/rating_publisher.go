package servicebus

import (
	"context"
	"encoding/json"
	"fmt"

	"world-vlog/domain/model"
	"world-vlog/domain/repository"
	"world-vlog/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewServiceBus connects to a namespace (e.g. myns.servicebus.windows.net) with the default Azure credential chain.
func NewServiceBus(ctx context.Context, namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, fmt.Errorf("service bus namespace is empty")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// RatingPublisher sends recorded ratings to a Service Bus queue
type RatingPublisher struct {
	queue     string
	newSender func(queue string) (messageSender, error)
}

func NewRatingPublisher(client *azservicebus.Client, queue string) repository.IRatingEvents {
	return &RatingPublisher{
		queue: queue,
		newSender: func(queue string) (messageSender, error) {
			return client.NewSender(queue, nil)
		},
	}
}

func (p *RatingPublisher) PublishRating(ctx context.Context, event model.RatingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	sender, err := p.newSender(p.queue)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender messageSender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, context.Background())

	contentType := "application/json"
	sbMessage := &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &event.VideoID,
	}
	sbMessage.ApplicationProperties = map[string]interface{}{"isGood": event.IsGood}
	if err := sender.SendMessage(ctx, sbMessage, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}

package pubsub_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"world-vlog/domain/model"
	"world-vlog/infrastructure/pubsub"

	gpubsub "cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newFakeClient(t *testing.T) (*gpubsub.Client, *pstest.Server) {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client, err := gpubsub.NewClient(context.Background(), "world-vlog-test", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

func TestRatingPublisher_CreatesTopicAndPublishes(t *testing.T) {
	client, srv := newFakeClient(t)
	ctx := context.Background()

	publisher, err := pubsub.NewRatingPublisher(ctx, client, "video-ratings")
	require.NoError(t, err)

	event := model.RatingEvent{VideoID: "abc", IsGood: true, RecordedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, publisher.PublishRating(ctx, event))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "abc", msgs[0].Attributes["videoId"])
	assert.Equal(t, "good", msgs[0].Attributes["verdict"])

	var got model.RatingEvent
	require.NoError(t, json.Unmarshal(msgs[0].Data, &got))
	assert.Equal(t, event, got)
}

func TestNewPubSub_RequiresProject(t *testing.T) {
	_, err := pubsub.NewPubSub(context.Background(), "")
	assert.Error(t, err)
}

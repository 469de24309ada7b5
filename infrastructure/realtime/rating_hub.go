package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"world-vlog/domain/model"
	"world-vlog/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

const subscriberBuffer = 8

// RatingHub fans recorded ratings out to every connected SSE client.
type RatingHub struct {
	mu   sync.RWMutex
	subs map[chan model.RatingEvent]struct{}
}

func NewRatingHub() *RatingHub {
	return &RatingHub{subs: make(map[chan model.RatingEvent]struct{})}
}

// PublishRating never blocks: a subscriber whose buffer is full misses the event.
func (h *RatingHub) PublishRating(_ context.Context, event model.RatingEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Serve streams rating events as text/event-stream until the client goes away.
func (h *RatingHub) Serve(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering
	c.Status(http.StatusOK)

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// Initial comment to keep connection open
	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt := <-ch:
			data, err := json.Marshal(evt)
			if err != nil {
				logger.GetLogger().WithField("error", err).Error("Error while encoding rating event")
				continue
			}
			_, _ = c.Writer.Write([]byte("event: rating\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

func (h *RatingHub) subscribe() chan model.RatingEvent {
	ch := make(chan model.RatingEvent, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *RatingHub) unsubscribe(ch chan model.RatingEvent) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// Subscribers reports how many clients are connected.
func (h *RatingHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

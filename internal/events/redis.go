package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MaxStreamLength caps the stream; trimming is approximate.
const MaxStreamLength = 10000

// StreamPublisher appends events to a single Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

func NewStreamPublisher(ctx context.Context, url, stream string) (*StreamPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewStreamPublisherWithClient(client, stream), nil
}

func NewStreamPublisherWithClient(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

func (p *StreamPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: MaxStreamLength,
		Approx: true,
		Values: map[string]any{
			"id":        e.ID,
			"topic":     string(e.Topic),
			"actor":     e.Actor,
			"timestamp": e.OccurredAt.Format(time.RFC3339Nano),
			"data":      string(data),
		},
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

func (p *StreamPublisher) Close() error {
	return p.client.Close()
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/accountkit/account-service/internal/core/domain"
)

const (
	defaultStream = "user-events"
	// streamMaxLen bounds the stream; trimming is approximate.
	streamMaxLen = 100_000
)

// EventPublisher appends user lifecycle events to a Redis stream.
type EventPublisher struct {
	client *redis.Client
	stream string
}

func NewEventPublisher(client *redis.Client, stream string) *EventPublisher {
	if stream == "" {
		stream = defaultStream
	}
	return &EventPublisher{client: client, stream: stream}
}

// Publish XADDs event with its type as a separate field so consumers can
// filter without decoding the payload.
func (p *EventPublisher) Publish(ctx context.Context, event domain.UserEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{
			"type":  string(event.Type),
			"event": payload,
		},
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

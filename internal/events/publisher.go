package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/service"
)

// Publisher writes sync outcomes to a Redis stream so downstream consumers
// (dashboards, alerting) can follow sync activity without polling the
// database
type Publisher struct {
	client *redis.Client
	stream string
}

// NewPublisher creates a stream publisher over an existing redis client
func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

// PublishSyncEvent serializes the event and appends it to the stream
func (p *Publisher) PublishSyncEvent(ctx context.Context, event service.SyncEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize sync event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish sync event: %w", err)
	}

	return nil
}

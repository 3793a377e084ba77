package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/redis/go-redis/v9"
)

// DefaultSubmissionChannel is the channel submitted simulations are sent to
const DefaultSubmissionChannel = "taxsim:simulations:submitted"

// ChannelPublisher is the subset of the redis client used by ChannelForwarder
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// envelope is the wire format of a forwarded event
type envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    string          `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// ChannelForwarder publishes submitted simulations to a redis channel so
// the commercial office tooling can pick them up.
type ChannelForwarder struct {
	client  ChannelPublisher
	channel string
}

// NewChannelForwarder creates a forwarder. An empty channel uses
// DefaultSubmissionChannel.
func NewChannelForwarder(client ChannelPublisher, channel string) *ChannelForwarder {
	if channel == "" {
		channel = DefaultSubmissionChannel
	}
	return &ChannelForwarder{client: client, channel: channel}
}

// EventTypes implements shared.EventHandler
func (f *ChannelForwarder) EventTypes() []string {
	return []string{simulation.EventTypeSimulationSubmitted}
}

// Handle implements shared.EventHandler
func (f *ChannelForwarder) Handle(ctx context.Context, e shared.DomainEvent) error {
	message, err := encodeEnvelope(e)
	if err != nil {
		return err
	}
	if err := f.client.Publish(ctx, f.channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", e.EventType(), f.channel, err)
	}
	return nil
}

func encodeEnvelope(e shared.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", e.EventType(), err)
	}
	return json.Marshal(envelope{
		EventID:       e.EventID().String(),
		EventType:     e.EventType(),
		AggregateType: e.AggregateType(),
		AggregateID:   e.AggregateID(),
		OccurredAt:    e.OccurredAt().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Payload:       payload,
	})
}

var _ shared.EventHandler = (*ChannelForwarder)(nil)

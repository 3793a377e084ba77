package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func submittedSimulation(t *testing.T) *simulation.Simulation {
	t.Helper()
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	s, err := simulation.NewDraft("SP", "RS", simulation.OperationSale, &fiscal.Party{Name: "ACME"}, now)
	require.NoError(t, err)
	s.ID = 12
	s.MarkSaved(now)
	require.NoError(t, s.Submit(now))
	return s
}

type fakePublisher struct {
	channel string
	message []byte
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	p.channel = channel
	p.message, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if p.err != nil {
		cmd.SetErr(p.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestSubmissionLogHandler(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	h := NewSubmissionLogHandler(zap.New(core))
	s := submittedSimulation(t)

	require.NoError(t, h.Handle(context.Background(), simulation.NewSimulationSubmittedEvent(s)))
	require.NoError(t, h.Handle(context.Background(), simulation.NewSimulationSavedEvent(s)))
	require.NoError(t, h.Handle(context.Background(), simulation.NewSimulationDeletedEvent(s.ID)))

	entries := recorded.FilterMessage("simulation submitted for review").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "SP->RS", entries[0].ContextMap()["route"])
	assert.Equal(t, "ACME", entries[0].ContextMap()["party"])
	assert.Equal(t, 1, recorded.FilterMessage("simulation saved").Len())
	assert.Equal(t, 1, recorded.FilterMessage("simulation deleted").Len())
	assert.Len(t, h.EventTypes(), 3)
}

func TestChannelForwarder(t *testing.T) {
	t.Run("publishes an envelope", func(t *testing.T) {
		pub := &fakePublisher{}
		f := NewChannelForwarder(pub, "")
		event := simulation.NewSimulationSubmittedEvent(submittedSimulation(t))

		require.NoError(t, f.Handle(context.Background(), event))
		assert.Equal(t, DefaultSubmissionChannel, pub.channel)

		var env envelope
		require.NoError(t, json.Unmarshal(pub.message, &env))
		assert.Equal(t, simulation.EventTypeSimulationSubmitted, env.EventType)
		assert.Equal(t, "12", env.AggregateID)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, "SP", payload["origin_jurisdiction_id"])
	})

	t.Run("wraps publish errors", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("connection refused")}
		f := NewChannelForwarder(pub, "office")

		err := f.Handle(context.Background(), simulation.NewSimulationSubmittedEvent(submittedSimulation(t)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "office")
	})

	t.Run("subscribes to submissions only", func(t *testing.T) {
		f := NewChannelForwarder(&fakePublisher{}, "")
		assert.Equal(t, []string{simulation.EventTypeSimulationSubmitted}, f.EventTypes())
	})
}

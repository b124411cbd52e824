// Package matchfeed pushes league events and live match replays to websocket viewers.
package matchfeed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/mcdev12/matchday/go/internal/outbox"
	"github.com/rs/zerolog/log"
)

// Service routes event envelopes to viewers and starts replays of played matches
type Service struct {
	connections *ConnectionManager
	replayer    *Replayer
	clock       clockwork.Clock
}

var _ events.Emitter = (*Service)(nil)

func NewService(connections *ConnectionManager, replayer *Replayer, clock clockwork.Clock) *Service {
	return &Service{
		connections: connections,
		replayer:    replayer,
		clock:       clock,
	}
}

// Start runs the connection manager and the replayer until ctx is cancelled
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting match feed")
	go s.connections.Start(ctx)
	s.replayer.Run(ctx)
	log.Info().Msg("match feed stopped")
}

// Dispatch forwards an envelope to the viewers of its aggregate.
func (s *Service) Dispatch(env outbox.Envelope) error {
	channel, err := uuid.Parse(env.AggregateID)
	if err != nil {
		return fmt.Errorf("parse aggregate ID: %w", err)
	}
	id, err := uuid.Parse(env.EventID)
	if err != nil {
		return fmt.Errorf("parse event ID: %w", err)
	}

	s.connections.Broadcast(channel, newFeedEvent(id, channel, env.EventType, env.Timestamp, env.Payload))

	switch env.EventType {
	case events.TypeFixturePlayed, events.TypeFriendlyPlayed:
		var m events.MatchPayload
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return fmt.Errorf("decode %s payload: %w", env.EventType, err)
		}
		s.replayer.Enqueue(channel, m)
	}
	return nil
}

// Emit feeds viewers straight from the process that produced the event.
// It serves deployments without a message bus.
func (s *Service) Emit(_ context.Context, aggregateID uuid.UUID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return s.Dispatch(outbox.Envelope{
		EventID:     uuid.New().String(),
		EventType:   eventType,
		AggregateID: aggregateID.String(),
		Timestamp:   s.clock.Now().UTC(),
		Payload:     data,
	})
}

func (s *Service) Stats() Stats {
	return s.connections.Stats()
}

// Package outbox stores domain events next to the league data and relays them to JetStream.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// OutboxRepository defines what the app layer needs from the repository
type OutboxRepository interface {
	InsertEvent(ctx context.Context, e Event) error
	FetchUnsent(ctx context.Context, limit int) ([]Event, error)
	FetchUnsentByID(ctx context.Context, id uuid.UUID) (*Event, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

// App handles outbox business logic
type App struct {
	repo  OutboxRepository
	clock clockwork.Clock
}

var _ events.Emitter = (*App)(nil)

// NewApp creates a new outbox App
func NewApp(repo OutboxRepository, clock clockwork.Clock) *App {
	return &App{
		repo:  repo,
		clock: clock,
	}
}

// Emit stores the event for the relay to publish
func (a *App) Emit(ctx context.Context, aggregateID uuid.UUID, eventType string, payload any) error {
	e, err := newEvent(ctx, a.clock, aggregateID, eventType, payload)
	if err != nil {
		return err
	}
	if err := a.repo.InsertEvent(ctx, e); err != nil {
		return fmt.Errorf("failed to insert %s event: %w", eventType, err)
	}

	log.Info().
		Str("event_id", e.ID.String()).
		Str("aggregate_id", aggregateID.String()).
		Str("event_type", eventType).
		Msg("outbox event inserted")
	return nil
}

// FetchUnsentEvents fetches unsent outbox events
func (a *App) FetchUnsentEvents(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	events, err := a.repo.FetchUnsent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent events: %w", err)
	}
	if len(events) > 0 {
		log.Debug().Int("count", len(events)).Msg("fetched unsent outbox events")
	}
	return events, nil
}

// GetUnsentEvent fetches an event that has not been relayed yet
func (a *App) GetUnsentEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	e, err := a.repo.FetchUnsentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event by ID: %w", err)
	}
	return e, nil
}

// MarkEventSent marks an outbox event as sent
func (a *App) MarkEventSent(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.MarkSent(ctx, id, a.clock.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark event as sent: %w", err)
	}
	log.Debug().Str("event_id", id.String()).Msg("marked outbox event as sent")
	return nil
}

// ProcessUnsentEvents hands a batch of unsent events to publish in creation order.
// Only events publish accepted are marked sent. It returns how many were.
func (a *App) ProcessUnsentEvents(ctx context.Context, batchSize int, publish func(context.Context, Event) error) (int, error) {
	events, err := a.FetchUnsentEvents(ctx, batchSize)
	if err != nil {
		return 0, err
	}

	processed, failed := 0, 0
	for _, e := range events {
		if err := publish(ctx, e); err != nil {
			log.Error().
				Err(err).
				Str("event_id", e.ID.String()).
				Str("event_type", e.EventType).
				Msg("failed to process event")
			failed++
			continue
		}
		if err := a.MarkEventSent(ctx, e.ID); err != nil {
			log.Error().Err(err).Str("event_id", e.ID.String()).Msg("failed to mark event as sent after processing")
			failed++
			continue
		}
		processed++
	}

	if processed > 0 || failed > 0 {
		log.Info().
			Int("processed", processed).
			Int("errors", failed).
			Int("total", len(events)).
			Msg("processed unsent events batch")
	}
	return processed, nil
}

func newEvent(ctx context.Context, clock clockwork.Clock, aggregateID uuid.UUID, eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("invalid %s payload: %w", eventType, err)
	}
	if len(data) == 0 || string(data) == "null" {
		return Event{}, fmt.Errorf("invalid %s payload: event payload cannot be empty", eventType)
	}

	e := Event{
		ID:          uuid.New(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     data,
		CreatedAt:   clock.Now().UTC(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		md, err := json.Marshal(Metadata{TraceID: sc.TraceID().String(), SpanID: sc.SpanID().String()})
		if err != nil {
			return Event{}, fmt.Errorf("failed to encode event metadata: %w", err)
		}
		e.Metadata = md
	}
	return e, nil
}

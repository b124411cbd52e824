package outbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/events"
)

// Direct publishes every event as soon as it is emitted, with no outbox table behind it.
// Storage backends without LISTEN/NOTIFY use it.
type Direct struct {
	publisher Publisher
	clock     clockwork.Clock
}

var _ events.Emitter = (*Direct)(nil)

func NewDirect(publisher Publisher, clock clockwork.Clock) *Direct {
	return &Direct{
		publisher: publisher,
		clock:     clock,
	}
}

func (d *Direct) Emit(ctx context.Context, aggregateID uuid.UUID, eventType string, payload any) error {
	e, err := newEvent(ctx, d.clock, aggregateID, eventType, payload)
	if err != nil {
		return err
	}
	if err := d.publisher.Publish(ctx, e); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// Package events defines the domain events emitted by league, transfer and friendly operations.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Emitter records a domain event for later publication
type Emitter interface {
	Emit(ctx context.Context, aggregateID uuid.UUID, eventType string, payload any) error
}

// Discard drops every event
type Discard struct{}

func (Discard) Emit(context.Context, uuid.UUID, string, any) error { return nil }

// Recorded is an event captured by a Recorder
type Recorded struct {
	AggregateID uuid.UUID
	Type        string
	Payload     json.RawMessage
}

// Recorder keeps emitted events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

func (r *Recorder) Emit(_ context.Context, aggregateID uuid.UUID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{AggregateID: aggregateID, Type: eventType, Payload: data})
	return nil
}

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}

// Count returns how many events of the type were recorded
func (r *Recorder) Count(eventType string) int {
	n := 0
	for _, e := range r.Events() {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

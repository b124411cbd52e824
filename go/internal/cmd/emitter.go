package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/config"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/mcdev12/matchday/go/internal/matchfeed"
	"github.com/mcdev12/matchday/go/internal/outbox"
	"github.com/mcdev12/matchday/go/internal/storage"
	"github.com/rs/zerolog/log"
)

// Delivery modes
const (
	modeLocal     = "local"
	modeOutbox    = "outbox"
	modeJetStream = "jetstream"
)

// emitter picks how domain events leave the process.
// Postgres writes them to the outbox for the relay. Other stores with NATS publish straight to JetStream.
// Without NATS the in-process feed receives them directly.
type emitter struct {
	events.Emitter
	mode      string
	consumer  *matchfeed.EventConsumer
	publisher *outbox.JetStreamPublisher
}

func setupEmitter(ctx context.Context, cfg *config.Config, backend *storage.Backend, feed *matchfeed.Service, clock clockwork.Clock) (*emitter, error) {
	if cfg.NATSURL == "" {
		if backend.SQL != nil {
			log.Warn().Msg("NATS_URL is not set; events bypass the outbox and reach only this process")
		}
		return &emitter{Emitter: feed, mode: modeLocal}, nil
	}

	e := &emitter{}
	if backend.SQL != nil {
		if err := outbox.Migrate(ctx, backend.SQL); err != nil {
			return nil, err
		}
		e.Emitter = outbox.NewApp(outbox.NewRepository(backend.SQL), clock)
		e.mode = modeOutbox
	} else {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATSURL
		publisher, err := outbox.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
		}
		e.Emitter = outbox.NewDirect(publisher, clock)
		e.publisher = publisher
		e.mode = modeJetStream
	}

	consumerCfg := matchfeed.DefaultJetStreamConsumerConfig()
	consumerCfg.URL = cfg.NATSURL
	consumerCfg.ConsumerName = "matchday-server-feed"
	consumer, err := matchfeed.NewEventConsumer(ctx, feed, consumerCfg)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to create feed consumer: %w", err)
	}
	e.consumer = consumer
	return e, nil
}

func (e *emitter) Close() {
	if e.consumer != nil {
		e.consumer.Stop()
	}
	if e.publisher != nil {
		if err := e.publisher.Close(); err != nil {
			log.Error().Err(err).Msg("close publisher")
		}
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/cache"
	"github.com/mcdev12/matchday/go/internal/catalog"
	"github.com/mcdev12/matchday/go/internal/config"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/mcdev12/matchday/go/internal/leagues"
	"github.com/mcdev12/matchday/go/internal/matchfeed"
	"github.com/mcdev12/matchday/go/internal/storage"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.NATSURL == "" {
		log.Fatal().Msg("NATS_URL is required for the standalone match feed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open storage")
	}
	defer backend.Close()

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load player catalog")
	}

	// read-only: the feed never writes league state
	opts := []leagues.Option{}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to redis")
		}
		defer rdb.Close()
		opts = append(opts, leagues.WithStandingsCache(cache.NewStandings(rdb, cfg.StandingsTTL)))
	}
	state := leagues.NewApp(leagues.NewRepository(backend.Store), cat, events.Discard{}, opts...)

	clock := clockwork.NewRealClock()
	connections := matchfeed.NewConnectionManager(matchfeed.DefaultConnectionConfig())
	feed := matchfeed.NewService(connections, matchfeed.NewReplayer(connections, clock, cfg.Rules.ReplayPace), clock)

	consumerCfg := matchfeed.DefaultJetStreamConsumerConfig()
	consumerCfg.URL = cfg.NATSURL
	consumer, err := matchfeed.NewEventConsumer(ctx, feed, consumerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create event consumer")
	}
	defer consumer.Stop()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)
	r.Mount("/feed", matchfeed.NewHandler(connections, state).Routes())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})

	server := &http.Server{
		Addr:        cfg.FeedAddr,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	log.Info().
		Str("addr", cfg.FeedAddr).
		Str("nats_url", cfg.NATSURL).
		Dur("replay_pace", cfg.Rules.ReplayPace).
		Msg("starting match feed")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		feed.Start(ctx)
		return nil
	})
	g.Go(func() error {
		return consumer.Start(ctx)
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("match feed exited unexpectedly")
		return
	}
	log.Info().Msg("match feed shutdown complete")
}

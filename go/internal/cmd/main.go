package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/cache"
	"github.com/mcdev12/matchday/go/internal/catalog"
	"github.com/mcdev12/matchday/go/internal/config"
	"github.com/mcdev12/matchday/go/internal/leagues"
	"github.com/mcdev12/matchday/go/internal/matchfeed"
	"github.com/mcdev12/matchday/go/internal/storage"
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
	log.Info().Str("path", cfg.CatalogPath).Int("players", len(cat.All())).Msg("loaded player catalog")

	var standings leagues.StandingsCache
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to redis")
		}
		defer rdb.Close()
		standings = cache.NewStandings(rdb, cfg.StandingsTTL)
	}

	clock := clockwork.NewRealClock()
	connections := matchfeed.NewConnectionManager(matchfeed.DefaultConnectionConfig())
	feed := matchfeed.NewService(connections, matchfeed.NewReplayer(connections, clock, cfg.Rules.ReplayPace), clock)

	delivery, err := setupEmitter(ctx, cfg, backend, feed, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("set up event delivery")
	}
	defer delivery.Close()

	services := setupServices(cfg, backend.Store, cat, delivery, standings, clock)
	sweeper := leagues.NewSweeper(services.LeagueApp, clock, cfg.SweeperWorkers, cfg.SweeperOffset)
	server := setupServer(":"+cfg.Port, services, matchfeed.NewHandler(connections, services.LeagueApp))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		feed.Start(ctx)
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(ctx)
	})
	if delivery.consumer != nil {
		g.Go(func() error {
			return delivery.consumer.Start(ctx)
		})
	}
	g.Go(func() error {
		log.Info().
			Str("addr", server.Addr).
			Str("storage", cfg.Storage).
			Str("events", delivery.mode).
			Msg("matchday server starting")
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
		log.Error().Err(err).Msg("matchday server exited unexpectedly")
		return
	}
	log.Info().Msg("matchday server shutdown complete")
}

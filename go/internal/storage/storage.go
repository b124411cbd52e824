// Package storage opens the document store named by the configuration.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mcdev12/matchday/go/internal/config"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/docstore/postgres"
	"github.com/mcdev12/matchday/go/internal/docstore/sqlite"
	"github.com/rs/zerolog/log"
)

// Backend is an open document store. SQL is set only for Postgres, where the outbox lives.
type Backend struct {
	Store   docstore.Store
	SQL     *sql.DB
	closers []func()
}

// Close releases every connection the backend opened
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// Open connects to the configured driver.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return &Backend{Store: docstore.NewMemory()}, nil

	case config.StorageSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite storage")
		return &Backend{
			Store: store,
			closers: []func(){func() {
				if err := store.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close sqlite storage")
				}
			}},
		}, nil

	case config.StoragePostgres:
		dsn := cfg.Database.DSN()
		store, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			store.Close()
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Database).
			Msg("connected to database")
		return &Backend{
			Store:   store,
			SQL:     db,
			closers: []func(){store.Close, func() { db.Close() }},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage)
}

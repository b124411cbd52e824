// Package postgres stores documents as JSONB rows guarded by a version column.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/matchday/go/internal/docstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    collection  TEXT        NOT NULL,
    id          TEXT        NOT NULL,
    version     BIGINT      NOT NULL,
    body        JSONB       NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_body_idx ON documents USING GIN (body jsonb_path_ops);
`

// Store is a docstore.Store backed by a pgx pool
type Store struct {
	pool *pgxpool.Pool
}

var _ docstore.Store = (*Store)(nil)

// New connects to dsn and ensures the documents table exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Get(ctx context.Context, c docstore.Collection, id string) (docstore.Document, error) {
	doc := docstore.Document{Collection: c, ID: id}
	err := s.pool.QueryRow(ctx,
		`SELECT version, body FROM documents WHERE collection = $1 AND id = $2`,
		string(c), id,
	).Scan(&doc.Version, &doc.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return docstore.Document{}, fmt.Errorf("%s/%s: %w", c, id, docstore.ErrNotFound)
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to get %s/%s: %w", c, id, err)
	}
	return doc, nil
}

func (s *Store) FindBy(ctx context.Context, c docstore.Collection, field, value string) ([]docstore.Document, error) {
	return s.query(ctx, c,
		`SELECT id, version, body FROM documents
		 WHERE collection = $1 AND body->>$2 = $3
		 ORDER BY created_at, id`,
		string(c), field, value,
	)
}

func (s *Store) List(ctx context.Context, c docstore.Collection) ([]docstore.Document, error) {
	return s.query(ctx, c,
		`SELECT id, version, body FROM documents WHERE collection = $1 ORDER BY created_at, id`,
		string(c),
	)
}

func (s *Store) query(ctx context.Context, c docstore.Collection, sql string, args ...any) ([]docstore.Document, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		d := docstore.Document{Collection: c}
		if err := rows.Scan(&d.ID, &d.Version, &d.Body); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", c, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c, err)
	}
	return docs, nil
}

// Apply runs the batch in one transaction; a zero-row update or delete is a version conflict.
func (s *Store) Apply(ctx context.Context, writes ...docstore.Write) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, w := range writes {
			if err := apply(ctx, tx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

func apply(ctx context.Context, tx pgx.Tx, w docstore.Write) error {
	switch w.Op {
	case docstore.OpCreate:
		tag, err := tx.Exec(ctx,
			`INSERT INTO documents (collection, id, version, body) VALUES ($1, $2, 1, $3)
			 ON CONFLICT (collection, id) DO NOTHING`,
			string(w.Collection), w.ID, []byte(w.Body),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s/%s: %w", w.Collection, w.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s/%s: %w", w.Collection, w.ID, docstore.ErrExists)
		}
	case docstore.OpUpdate:
		tag, err := tx.Exec(ctx,
			`UPDATE documents SET body = $4, version = version + 1, updated_at = now()
			 WHERE collection = $1 AND id = $2 AND version = $3`,
			string(w.Collection), w.ID, w.Version, []byte(w.Body),
		)
		if err != nil {
			return fmt.Errorf("failed to update %s/%s: %w", w.Collection, w.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return missingOrStale(ctx, tx, w)
		}
	case docstore.OpDelete:
		tag, err := tx.Exec(ctx,
			`DELETE FROM documents WHERE collection = $1 AND id = $2 AND version = $3`,
			string(w.Collection), w.ID, w.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to delete %s/%s: %w", w.Collection, w.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return missingOrStale(ctx, tx, w)
		}
	default:
		return fmt.Errorf("unknown write op %d", w.Op)
	}
	return nil
}

func missingOrStale(ctx context.Context, tx pgx.Tx, w docstore.Write) error {
	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2)`,
		string(w.Collection), w.ID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check %s/%s: %w", w.Collection, w.ID, err)
	}
	if !exists {
		return fmt.Errorf("%s/%s: %w", w.Collection, w.ID, docstore.ErrNotFound)
	}
	return fmt.Errorf("%s/%s: %w", w.Collection, w.ID, docstore.ErrConflict)
}

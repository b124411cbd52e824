// Package sqlite stores documents in a single-file SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/sqlutil"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT    NOT NULL,
    id         TEXT    NOT NULL,
    version    INTEGER NOT NULL,
    body       TEXT    NOT NULL,
    PRIMARY KEY (collection, id)
);
`

// Store is a docstore.Store backed by SQLite
type Store struct {
	db *sql.DB
}

var _ docstore.Store = (*Store)(nil)

// Open opens (or creates) the database at path. ":memory:" keeps everything in process.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer keeps transactions serialized and in-memory databases shared
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type queries struct {
	db sqlutil.DBTX
}

func newQueries(db sqlutil.DBTX) *queries {
	return &queries{db: db}
}

func (s *Store) Get(ctx context.Context, c docstore.Collection, id string) (docstore.Document, error) {
	doc := docstore.Document{Collection: c, ID: id}
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT version, body FROM documents WHERE collection = ? AND id = ?`,
		string(c), id,
	).Scan(&doc.Version, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Document{}, fmt.Errorf("%s/%s: %w", c, id, docstore.ErrNotFound)
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to get %s/%s: %w", c, id, err)
	}
	doc.Body = []byte(body)
	return doc, nil
}

// FindBy compares the JSON field as text, rendering booleans as true/false.
func (s *Store) FindBy(ctx context.Context, c docstore.Collection, field, value string) ([]docstore.Document, error) {
	path := "$." + field
	return s.query(ctx, c, `
		SELECT id, version, body FROM documents
		WHERE collection = ?
		  AND CASE json_type(body, ?)
		        WHEN 'true' THEN 'true'
		        WHEN 'false' THEN 'false'
		        ELSE CAST(json_extract(body, ?) AS TEXT)
		      END = ?
		ORDER BY rowid`,
		string(c), path, path, value,
	)
}

func (s *Store) List(ctx context.Context, c docstore.Collection) ([]docstore.Document, error) {
	return s.query(ctx, c, `SELECT id, version, body FROM documents WHERE collection = ? ORDER BY rowid`, string(c))
}

func (s *Store) query(ctx context.Context, c docstore.Collection, query string, args ...any) ([]docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		d := docstore.Document{Collection: c}
		var body string
		if err := rows.Scan(&d.ID, &d.Version, &body); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", c, err)
		}
		d.Body = []byte(body)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c, err)
	}
	return docs, nil
}

func (s *Store) Apply(ctx context.Context, writes ...docstore.Write) error {
	return sqlutil.Run(ctx, s.db, newQueries, func(q *queries) error {
		for _, w := range writes {
			if err := q.apply(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

func (q *queries) apply(ctx context.Context, w docstore.Write) error {
	var (
		res sql.Result
		err error
	)
	switch w.Op {
	case docstore.OpCreate:
		res, err = q.db.ExecContext(ctx,
			`INSERT INTO documents (collection, id, version, body) VALUES (?, ?, 1, ?)
			 ON CONFLICT (collection, id) DO NOTHING`,
			string(w.Collection), w.ID, string(w.Body),
		)
	case docstore.OpUpdate:
		res, err = q.db.ExecContext(ctx,
			`UPDATE documents SET body = ?, version = version + 1 WHERE collection = ? AND id = ? AND version = ?`,
			string(w.Body), string(w.Collection), w.ID, w.Version,
		)
	case docstore.OpDelete:
		res, err = q.db.ExecContext(ctx,
			`DELETE FROM documents WHERE collection = ? AND id = ? AND version = ?`,
			string(w.Collection), w.ID, w.Version,
		)
	default:
		return fmt.Errorf("unknown write op %d", w.Op)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", w.Collection, w.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", w.Collection, w.ID, err)
	}
	if n > 0 {
		return nil
	}
	if w.Op == docstore.OpCreate {
		return fmt.Errorf("%s/%s: %w", w.Collection, w.ID, docstore.ErrExists)
	}

	var exists int
	if err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ? AND id = ?`,
		string(w.Collection), w.ID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check %s/%s: %w", w.Collection, w.ID, err)
	}
	if exists == 0 {
		return fmt.Errorf("%s/%s: %w", w.Collection, w.ID, docstore.ErrNotFound)
	}
	return fmt.Errorf("%s/%s: %w", w.Collection, w.ID, docstore.ErrConflict)
}

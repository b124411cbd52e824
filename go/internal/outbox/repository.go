package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

const eventColumns = `id, aggregate_id, event_type, payload, metadata, created_at, sent_at`

type Repository struct {
	db sqlutil.DBTX
}

func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) InsertEvent(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO league_outbox (id, aggregate_id, event_type, payload, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.AggregateID, e.EventType, []byte(e.Payload), sqlutil.ToNullRawMessage(e.Metadata), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", e.EventType, err)
	}
	return nil
}

func (r *Repository) FetchUnsent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM league_outbox
		 WHERE sent_at IS NULL
		 ORDER BY created_at, id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read unsent outbox events: %w", err)
	}
	return events, nil
}

// FetchUnsentByID returns the event only while it still waits to be sent
func (r *Repository) FetchUnsentByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM league_outbox WHERE id = $1 AND sent_at IS NULL`,
		id,
	)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("outbox event %s not found or already sent", id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE league_outbox SET sent_at = $2 WHERE id = $1 AND sent_at IS NULL`,
		id, sqlutil.ToSqlTime(&at),
	)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (Event, error) {
	var (
		e        Event
		payload  []byte
		metadata pqtype.NullRawMessage
		sentAt   sql.NullTime
	)
	if err := s.Scan(&e.ID, &e.AggregateID, &e.EventType, &payload, &metadata, &e.CreatedAt, &sentAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, err
		}
		return Event{}, fmt.Errorf("failed to scan outbox event: %w", err)
	}
	e.Payload = payload
	e.Metadata = sqlutil.FromNullRawMessage(metadata)
	e.SentAt = sqlutil.FromSqlTime(sentAt)
	return e, nil
}

func (r *Repository) CountUnsent(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM league_outbox WHERE sent_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unsent outbox events: %w", err)
	}
	return n, nil
}

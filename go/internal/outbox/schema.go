package outbox

import (
	"context"
	"fmt"

	"github.com/mcdev12/matchday/go/internal/sqlutil"
)

// NotifyChannel is the LISTEN/NOTIFY channel that announces new outbox rows
const NotifyChannel = "league_outbox_events"

const schema = `
CREATE TABLE IF NOT EXISTS league_outbox (
    id            UUID        PRIMARY KEY,
    aggregate_id  UUID        NOT NULL,
    event_type    TEXT        NOT NULL,
    payload       JSONB       NOT NULL,
    metadata      JSONB,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    sent_at       TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS league_outbox_unsent_idx ON league_outbox (created_at) WHERE sent_at IS NULL;

CREATE OR REPLACE FUNCTION notify_league_outbox() RETURNS trigger AS $$
BEGIN
    PERFORM pg_notify('` + NotifyChannel + `', NEW.id::text);
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS league_outbox_notify ON league_outbox;
CREATE TRIGGER league_outbox_notify AFTER INSERT ON league_outbox
    FOR EACH ROW EXECUTE FUNCTION notify_league_outbox();
`

// Migrate creates the outbox table and its notify trigger
func Migrate(ctx context.Context, db sqlutil.DBTX) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate league outbox: %w", err)
	}
	return nil
}

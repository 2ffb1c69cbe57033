package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessionSlotsTable, downCreateSessionSlotsTable)
}

func upCreateSessionSlotsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE session_slots (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			slot_time TEXT NOT NULL,
			booked BOOLEAN NOT NULL DEFAULT false,
			user_id UUID REFERENCES users(id) ON DELETE SET NULL,
			UNIQUE (session_id, slot_time)
		);

		CREATE UNIQUE INDEX idx_session_slots_one_per_user
			ON session_slots(session_id, user_id) WHERE booked;
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateSessionSlotsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS session_slots;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

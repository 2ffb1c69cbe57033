package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessionsTable, downCreateSessionsTable)
}

func upCreateSessionsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE sessions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			tutor_name TEXT NOT NULL DEFAULT '',
			skills TEXT[] NOT NULL DEFAULT '{}',
			colleges TEXT[] NOT NULL DEFAULT '{}',
			is_group BOOLEAN NOT NULL DEFAULT false,
			capacity INT NOT NULL DEFAULT 0,
			slots_remaining INT NOT NULL DEFAULT 0,
			session_date TEXT,
			start_time TEXT,
			total_duration INT NOT NULL DEFAULT 0,
			slot_duration INT NOT NULL DEFAULT 0,
			expiry_date TEXT,
			expiry_time TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE INDEX idx_sessions_category ON sessions(category);
		CREATE INDEX idx_sessions_created_by ON sessions(created_by);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateSessionsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS sessions;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

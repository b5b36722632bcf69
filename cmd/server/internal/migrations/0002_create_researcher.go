package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0002, Down0002)
}

func Up0002(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
CREATE TABLE researcher (
    id UUID PRIMARY KEY DEFAULT uuidv7_sub_ms(),
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    reputation_score INTEGER NOT NULL DEFAULT 0,
    reports_submitted INTEGER NOT NULL DEFAULT 0,
    reports_accepted INTEGER NOT NULL DEFAULT 0,
    reports_rejected INTEGER NOT NULL DEFAULT 0,
    duplicate_reports INTEGER NOT NULL DEFAULT 0,
    bounties_earned DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp
);
`)
	if err != nil {
		return err
	}

	return nil
}

func Down0002(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE researcher;`)
	if err != nil {
		return err
	}

	return nil
}

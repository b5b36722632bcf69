package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0004, Down0004)
}

func Up0004(ctx context.Context, tx *sql.Tx) error {
	return execStatements(ctx, tx,
		statement{query: `
CREATE TABLE program (
    id UUID PRIMARY KEY DEFAULT uuidv7_sub_ms(),
    organization_id UUID NOT NULL REFERENCES organization (id),
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    type TEXT NOT NULL,
    visibility TEXT NOT NULL DEFAULT 'public',
    scope JSONB NOT NULL DEFAULT '[]',
    out_of_scope JSONB NOT NULL DEFAULT '[]',
    reward_range JSONB DEFAULT NULL,
    invited_emails JSONB NOT NULL DEFAULT '[]',
    report_count INTEGER NOT NULL DEFAULT 0,
    resolved_reports INTEGER NOT NULL DEFAULT 0,
    active BOOLEAN DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp
);
`},
		statement{query: `CREATE INDEX program_organization_id_idx ON program (organization_id);`},
	)
}

func Down0004(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE program;`)
	if err != nil {
		return err
	}

	return nil
}

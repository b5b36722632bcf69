package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0005, Down0005)
}

func Up0005(ctx context.Context, tx *sql.Tx) error {
	return execStatements(ctx, tx,
		statement{query: `
CREATE TABLE submission (
    id UUID PRIMARY KEY DEFAULT uuidv7_sub_ms(),
    program_id UUID NOT NULL REFERENCES program (id),
    researcher_id UUID NOT NULL REFERENCES researcher (id),
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    target TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    vulnerable_url TEXT NOT NULL DEFAULT '',
    severity TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending',
    points INTEGER NOT NULL DEFAULT 0,
    reward DOUBLE PRECISION DEFAULT NULL,
    resolved_at TIMESTAMP WITH TIME ZONE DEFAULT NULL,
    collaborators JSONB NOT NULL DEFAULT '[]',
    evidence JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT current_timestamp
);
`},
		statement{query: `CREATE INDEX submission_program_id_idx ON submission (program_id);`},
		statement{query: `CREATE INDEX submission_researcher_id_idx ON submission (researcher_id);`},
	)
}

func Down0005(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE submission;`)
	if err != nil {
		return err
	}

	return nil
}

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const createAccountTable = `
	CREATE TABLE IF NOT EXISTS account (
		id      INTEGER PRIMARY KEY,
		name    VARCHAR(50),
		balance FLOAT DEFAULT 0.0
	)
`

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Migrate creates the account table when it does not exist yet.
// It is safe to call on every start.
func Migrate(ctx context.Context, db execer) error {
	if _, err := db.Exec(ctx, createAccountTable); err != nil {
		return fmt.Errorf("failed to create account table: %w", err)
	}
	return nil
}

package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "embed"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the tables in schema.sql if they do not already exist.
// SQL Server deployments are provisioned outside this service.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if dialect == SQLServer {
		return fmt.Errorf("migrate: schema for %s is managed externally", dialect)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

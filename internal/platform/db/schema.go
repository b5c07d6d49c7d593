package db

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schema string

// Schema returns the idempotent DDL for every table the service uses.
func Schema() string {
	return schema
}

// Migrate applies Schema. Every statement is IF NOT EXISTS, so it is safe to
// run against an existing database.
func Migrate(ctx context.Context, q DBTX) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("platform/db: migrate: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"wishboard/migrations"

	"github.com/pressly/goose/v3"
)

// Migrate applies every pending migration from the embedded set.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return 0, fmt.Errorf("goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}

	return len(results), nil
}

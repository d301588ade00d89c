// Package db opens the backing stores and prepares their schema.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/sellharbor/internal/db/migrations"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// migrate is a seam for tests.
var migrate = func(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// InitPostgres opens dsn, checks the connection and applies pending migrations.
func InitPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

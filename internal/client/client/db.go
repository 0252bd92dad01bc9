package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/lessonbook/internal/client/migrations"
	"github.com/dmitrijs2005/lessonbook/internal/dbx"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies the embedded client schema. It uses a goose
// provider rather than goose's package state, so a server in the same
// process keeps its own dialect and base FS.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// InitDatabase opens (creating if needed) the local SQLite file at path and
// migrates it.
func InitDatabase(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := dbx.Open(ctx, dbx.DriverSQLite, path)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

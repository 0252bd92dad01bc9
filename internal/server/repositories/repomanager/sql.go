package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/lessonbook/internal/dbx"
	"github.com/dmitrijs2005/lessonbook/internal/logging"
	"github.com/dmitrijs2005/lessonbook/internal/server/migrations"
	"github.com/dmitrijs2005/lessonbook/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/lessonbook/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager serves the Postgres and SQLite backends. The two
// differ only in their migration set and goose dialect.
type SQLRepositoryManager struct {
	migrations fs.FS
	dir        string
	dialect    goose.Dialect
	logger     logging.Logger
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewSQLRepository(db)
}

// migrateUp is a seam for testing goose.Provider.Up.
var migrateUp = func(ctx context.Context, p *goose.Provider) ([]*goose.MigrationResult, error) {
	return p.Up(ctx)
}

// RunMigrations applies the embedded migrations for the manager's dialect.
// It uses a goose provider rather than goose's package state, and reports
// each applied file through the manager's logger.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := m.provider(db)
	if err != nil {
		return err
	}

	results, err := migrateUp(ctx, p)
	if err != nil {
		return err
	}
	for _, r := range results {
		m.logger.Info(ctx, "migration applied",
			"version", r.Source.Version, "file", r.Source.Path, "duration", r.Duration)
	}
	return nil
}

func (m *SQLRepositoryManager) provider(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(m.migrations, m.dir)
	if err != nil {
		return nil, fmt.Errorf("migrations dir %q: %w", m.dir, err)
	}
	p, err := goose.NewProvider(m.dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return p, nil
}

// NewRepositoryManager returns the manager for a dbx driver name. logger
// may be nil.
func NewRepositoryManager(driver string, logger logging.Logger) (RepositoryManager, error) {
	if logger == nil {
		logger = logging.Nop{}
	}
	logger = logger.With("module", "migrations")

	switch driver {
	case dbx.DriverPostgres:
		return &SQLRepositoryManager{migrations: migrations.Postgres, dir: "postgres", dialect: goose.DialectPostgres, logger: logger}, nil
	case dbx.DriverSQLite:
		return &SQLRepositoryManager{migrations: migrations.SQLite, dir: "sqlite", dialect: goose.DialectSQLite3, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

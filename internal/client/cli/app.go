package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/lessonbook/internal/client/client"
	"github.com/dmitrijs2005/lessonbook/internal/client/config"
	"github.com/dmitrijs2005/lessonbook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lessonbook/internal/client/session"
	"github.com/dmitrijs2005/lessonbook/internal/logging"
	"github.com/jmoiron/sqlx"
)

type App struct {
	config  *config.Config
	client  client.Client
	session *session.Manager
	db      *sqlx.DB
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp opens the local database and connects the configured transport.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop{}
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store := metadata.NewTokenStore(metadata.NewSQLiteRepository(db))
	m := session.NewManager(store, nil, c.RefreshTimeout, logger)

	var api client.Client
	switch c.Transport {
	case config.TransportHTTP:
		api = client.NewHTTPClient(c.ServerHTTPURL, m, nil)
	default:
		api, err = client.NewGRPCClient(c.ServerEndpointAddr, m)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &App{
		config:  c,
		client:  api,
		session: m,
		db:      db,
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run starts the REPL and releases the connection and database on exit.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()
	return a.runLoop(ctx)
}

func (a *App) runLoop(ctx context.Context) error {
	fmt.Fprintln(a.out, "Welcome to lessonbook CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
	return nil
}

func (a *App) Close() {
	if err := a.client.Close(); err != nil {
		a.logger.Warn(context.Background(), "close client", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn(context.Background(), "close database", "error", err)
	}
}

// isLoggedIn reports whether a session is held, in memory or on disk.
func (a *App) isLoggedIn(ctx context.Context) bool {
	if a.session.AccessToken() != "" {
		return true
	}
	ok, err := a.session.HasSession(ctx)
	if err != nil {
		a.logger.Warn(ctx, "read session", "error", err)
	}
	return ok
}

func (a *App) getStatus() string {
	if a.isLoggedIn(context.Background()) {
		return "(logged in)"
	}
	return ""
}

// withTimeout bounds one command by the configured request timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

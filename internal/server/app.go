// Package server wires the session subsystem together: storage, the token
// issuer, the session service, and the gRPC and HTTP surfaces, with
// graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/lessonbook/internal/dbx"
	"github.com/dmitrijs2005/lessonbook/internal/logging"
	"github.com/dmitrijs2005/lessonbook/internal/server/auth"
	"github.com/dmitrijs2005/lessonbook/internal/server/config"
	"github.com/dmitrijs2005/lessonbook/internal/server/httpapi"
	"github.com/dmitrijs2005/lessonbook/internal/server/metrics"
	"github.com/dmitrijs2005/lessonbook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lessonbook/internal/server/services"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/lessonbook/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sqlx.DB
	issuer   *auth.Issuer
	sessions *services.SessionService
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewRepositoryManager(c.DatabaseDriver, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := rm.RunMigrations(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mx := metrics.New(registry)

	issuer := auth.NewIssuer([]byte(c.SecretKey))

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		issuer:   issuer,
		sessions: services.NewSessionService(db, rm, issuer, c, logger, mx),
		registry: registry,
		metrics:  mx,
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves both surfaces until ctx is cancelled, a signal arrives, or
// either server fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessions, app.issuer, app.metrics)
	httpServer := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.sessions, app.issuer, app.metrics, app.registry)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	run := func(name string, fn func(context.Context) error) {
		defer wg.Done()
		if err := fn(ctx); err != nil {
			app.logger.Error(ctx, "server failed", "server", name, "error", err)
			mu.Lock()
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			mu.Unlock()
			cancelFunc()
		}
	}

	wg.Add(2)
	go run("grpc", grpcServer.Run)
	go run("http", httpServer.Run)
	wg.Wait()

	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return errors.Join(errs...)
}

// Package httpapi serves the auth service as JSON over HTTP. Routes are
// registered together with their gate access level, and the gate
// middleware is installed on every router built here.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/lessonbook/internal/authapi"
	"github.com/dmitrijs2005/lessonbook/internal/logging"
	"github.com/dmitrijs2005/lessonbook/internal/server/gate"
	"github.com/dmitrijs2005/lessonbook/internal/server/metrics"
	"github.com/dmitrijs2005/lessonbook/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionService is what the handlers need from services.SessionService.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Registration(ctx context.Context, email, password, username string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, accessToken string) (int64, error)
	GetUserIDFromToken(ctx context.Context, token string) (int64, error)
}

type HTTPServer struct {
	address  string
	sessions SessionService
	gate     *gate.Gate
	logger   logging.Logger
	metrics  *metrics.Metrics
	router   *mux.Router
}

// NewHTTPServer builds the router. gatherer backs /metrics and defaults to
// the global registry; mx may be nil.
func NewHTTPServer(a string, l logging.Logger, sessions SessionService, verifier gate.Verifier,
	mx *metrics.Metrics, gatherer prometheus.Gatherer) *HTTPServer {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &HTTPServer{
		address:  a,
		sessions: sessions,
		gate:     gate.New(gate.NewPolicy(), verifier, mx),
		logger:   l.With("module", "http_server"),
		metrics:  mx,
		router:   mux.NewRouter(),
	}

	s.router.Use(s.loggingMiddleware, s.gateMiddleware)

	handlers := map[string]http.HandlerFunc{
		authapi.RouteLogin:        s.login,
		authapi.RouteRegistration: s.registration,
		authapi.RouteIssueTokens:  s.issueTokens,
		authapi.RouteLogout:       s.logout,
		authapi.RouteProfile:      s.profile,
		authapi.RouteMe:           s.me,
	}
	for _, r := range authapi.Routes {
		s.register(r.HTTPMethod, r.Path, r.Name, r.Access, handlers[r.Name])
	}

	s.register(http.MethodGet, "/healthz", authapi.RouteHealth, authapi.Public, s.health)
	s.register(http.MethodGet, "/metrics", authapi.RouteMetrics, authapi.Public,
		promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}).ServeHTTP)

	return s
}

// register adds a named route and records its access level with the gate.
func (s *HTTPServer) register(method, path, name string, access authapi.Access, h http.HandlerFunc) {
	s.gate.Policy().Register(name, access)
	s.router.HandleFunc(path, h).Methods(method).Name(name)
}

func (s *HTTPServer) Handler() http.Handler { return s.router }

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

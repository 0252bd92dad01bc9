// Package grpc serves the auth service over gRPC. Every server built here
// runs the gate interceptor; there is no way to construct one without it.
package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/lessonbook/internal/logging"
	pb "github.com/dmitrijs2005/lessonbook/internal/proto"
	"github.com/dmitrijs2005/lessonbook/internal/server/gate"
	"github.com/dmitrijs2005/lessonbook/internal/server/metrics"
	"github.com/dmitrijs2005/lessonbook/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// SessionService is what the handlers need from services.SessionService.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Registration(ctx context.Context, email, password, username string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, accessToken string) (int64, error)
	GetUserIDFromToken(ctx context.Context, token string) (int64, error)
}

type GRPCServer struct {
	pb.UnimplementedAuthServiceServer

	address  string
	sessions SessionService
	gate     *gate.Gate
	logger   logging.Logger
	metrics  *metrics.Metrics
	srv      *grpc.Server
	health   *health.Server
}

// NewGRPCServer builds the server with the route table from authapi.
// verifier checks access tokens on protected methods; mx may be nil.
func NewGRPCServer(a string, l logging.Logger, sessions SessionService, verifier gate.Verifier, mx *metrics.Metrics) *GRPCServer {
	s := &GRPCServer{
		address:  a,
		sessions: sessions,
		gate:     gate.New(gate.RoutePolicy(), verifier, mx),
		logger:   l.With("module", "grpc_server"),
		metrics:  mx,
		health:   health.NewServer(),
	}

	s.srv = grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.gateInterceptor))

	pb.RegisterAuthServiceServer(s.srv, s)
	healthpb.RegisterHealthServer(s.srv, s.health)
	s.health.SetServingStatus(pb.AuthService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return s
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		s.srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

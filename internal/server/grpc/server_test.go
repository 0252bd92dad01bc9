package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/dmitrijs2005/lessonbook/internal/logging"
	pb "github.com/dmitrijs2005/lessonbook/internal/proto"
	"github.com/dmitrijs2005/lessonbook/internal/server/auth"
	"github.com/dmitrijs2005/lessonbook/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

var testSecret = []byte("secret")

// fakeSessions records the tokens it was handed and returns canned results.
type fakeSessions struct {
	pair       *services.TokenPair
	err        error
	removed    int64
	id         int64
	gotToken   string
	gotRefresh string
}

func (f *fakeSessions) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	return f.pair, f.err
}

func (f *fakeSessions) Registration(ctx context.Context, email, password, username string) (*services.TokenPair, error) {
	return f.pair, f.err
}

func (f *fakeSessions) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	f.gotRefresh = refreshToken
	return f.pair, f.err
}

func (f *fakeSessions) Logout(ctx context.Context, accessToken string) (int64, error) {
	f.gotToken = accessToken
	return f.removed, f.err
}

func (f *fakeSessions) GetUserIDFromToken(ctx context.Context, token string) (int64, error) {
	f.gotToken = token
	return f.id, f.err
}

// startBufconn serves s in memory and returns a connected client.
func startBufconn(t *testing.T, sessions SessionService) *grpc.ClientConn {
	t.Helper()

	s := NewGRPCServer("bufconn", logging.Nop{}, sessions, auth.NewIssuer(testSecret), nil)
	lis := bufconn.Listen(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufconn",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return conn
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, "Bearer "+token)
}

func TestLogin_ReturnsPair(t *testing.T) {
	fake := &fakeSessions{pair: &services.TokenPair{AccessToken: "a", RefreshToken: "r"}}
	client := pb.NewAuthServiceClient(startBufconn(t, fake))

	resp, err := client.Login(context.Background(), &pb.LoginRequest{Email: "a@b.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "a", resp.AccessToken)
	assert.Equal(t, "r", resp.RefreshToken)
}

func TestHandlers_MapErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{name: "invalid credentials", err: common.ErrInvalidCredentials, code: codes.Unauthenticated},
		{name: "email taken", err: common.ErrEmailTaken, code: codes.AlreadyExists},
		{name: "token not found", err: common.ErrTokenNotFound, code: codes.NotFound},
		{name: "internal", err: common.ErrorInternal, code: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := pb.NewAuthServiceClient(startBufconn(t, &fakeSessions{err: tt.err}))

			_, err := client.Registration(context.Background(), &pb.RegistrationRequest{Email: "a@b.com"})
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestIssueTokens_PassesRefreshToken(t *testing.T) {
	fake := &fakeSessions{pair: &services.TokenPair{AccessToken: "a2", RefreshToken: "r2"}}
	client := pb.NewAuthServiceClient(startBufconn(t, fake))

	resp, err := client.IssueTokens(context.Background(), &pb.IssueTokensRequest{RefreshToken: "r1"})
	require.NoError(t, err)
	assert.Equal(t, "r1", fake.gotRefresh)
	assert.Equal(t, "r2", resp.RefreshToken)
}

func TestLogout_PublicAndReadsHeader(t *testing.T) {
	fake := &fakeSessions{removed: 1}
	client := pb.NewAuthServiceClient(startBufconn(t, fake))

	expired, err := auth.NewIssuer(testSecret).Mint(1, "a@b.com", -time.Minute)
	require.NoError(t, err)

	resp, err := client.Logout(withToken(context.Background(), expired), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Removed)
	assert.Equal(t, expired, fake.gotToken)
}

func TestProfile(t *testing.T) {
	fake := &fakeSessions{id: 5}
	client := pb.NewAuthServiceClient(startBufconn(t, fake))

	resp, err := client.Profile(withToken(context.Background(), "tok"), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.PrincipalId)
	assert.Equal(t, "tok", fake.gotToken)
}

func TestMe_RequiresValidToken(t *testing.T) {
	client := pb.NewAuthServiceClient(startBufconn(t, &fakeSessions{}))
	iss := auth.NewIssuer(testSecret)

	_, err := client.Me(context.Background(), &emptypb.Empty{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())

	expired, err := iss.Mint(9, "a@b.com", -time.Minute)
	require.NoError(t, err)
	_, err = client.Me(withToken(context.Background(), expired), &emptypb.Empty{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrTokenExpired.Error(), status.Convert(err).Message())

	refresh, err := iss.MintRefresh(9, "a@b.com", time.Hour)
	require.NoError(t, err)
	_, err = client.Me(withToken(context.Background(), refresh), &emptypb.Empty{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrTokenInvalid.Error(), status.Convert(err).Message())

	valid, err := iss.Mint(9, "a@b.com", time.Hour)
	require.NoError(t, err)
	resp, err := client.Me(withToken(context.Background(), valid), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, int64(9), resp.PrincipalId)
}

func TestHealth_IsPublic(t *testing.T) {
	conn := startBufconn(t, &fakeSessions{})

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: pb.AuthService_ServiceDesc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestGateInterceptor_UnknownMethodIsProtected(t *testing.T) {
	s := NewGRPCServer("unused", logging.Nop{}, &fakeSessions{}, auth.NewIssuer(testSecret), nil)

	info := &grpc.UnaryServerInfo{FullMethod: "/lessonbook.booking.v1.Lessons/Delete"}
	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler must not run")
		return nil, nil
	}

	_, err := s.gateInterceptor(context.Background(), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop{}, &fakeSessions{}, auth.NewIssuer(testSecret), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err, "Run returned error on graceful stop")
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, &fakeSessions{}, auth.NewIssuer(testSecret), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.Error(t, srv.Run(ctx))
}

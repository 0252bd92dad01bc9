package client

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/lessonbook/internal/client/session"
	"github.com/dmitrijs2005/lessonbook/internal/common"
	pb "github.com/dmitrijs2005/lessonbook/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.AuthServiceClient
	session     *session.Manager
}

// NewGRPCClient connects to endpointURL. Extra dial options come after the
// defaults, which lets tests dial an in-memory listener.
func NewGRPCClient(endpointURL string, m *session.Manager, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, session: m}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	m.SetRefresher(c.refresh)
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.session.UnaryClientInterceptor()),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewAuthServiceClient(conn)
	return nil
}

func (s *GRPCClient) refresh(ctx context.Context, refreshToken string) (string, string, error) {
	resp, err := s.client.IssueTokens(ctx, &pb.IssueTokensRequest{RefreshToken: refreshToken})
	if err != nil {
		switch status.Code(err) {
		case codes.NotFound:
			return "", "", common.ErrTokenNotFound
		case codes.Unauthenticated:
			return "", "", common.ErrTokenInvalid
		}
		return "", "", s.mapError(err)
	}
	return resp.AccessToken, resp.RefreshToken, nil
}

func (s *GRPCClient) Register(ctx context.Context, email, password, username string) error {
	req := &pb.RegistrationRequest{Email: email, Password: password, Username: username}

	resp, err := s.client.Registration(ctx, req)
	if err != nil {
		return s.mapError(err)
	}
	return s.session.SetTokens(ctx, resp.AccessToken, resp.RefreshToken)
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) error {
	req := &pb.LoginRequest{Email: email, Password: password}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return s.mapError(err)
	}
	return s.session.SetTokens(ctx, resp.AccessToken, resp.RefreshToken)
}

func (s *GRPCClient) Logout(ctx context.Context) (int64, error) {
	resp, err := s.client.Logout(ctx, &emptypb.Empty{})

	// the local session ends whatever the server said
	if cerr := s.session.Clear(ctx); cerr != nil && err == nil {
		return 0, cerr
	}
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Removed, nil
}

func (s *GRPCClient) Profile(ctx context.Context) (int64, error) {
	resp, err := s.client.Profile(ctx, &emptypb.Empty{})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.PrincipalId, nil
}

func (s *GRPCClient) Me(ctx context.Context) (int64, error) {
	resp, err := s.client.Me(ctx, &emptypb.Empty{})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.PrincipalId, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if errors.Is(err, session.ErrUnauthorized) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Unavailable:
		return ErrUnavailable
	case codes.Unauthenticated:
		if st.Message() == common.ErrInvalidCredentials.Error() {
			return common.ErrInvalidCredentials
		}
		return ErrUnauthorized
	case codes.AlreadyExists, codes.InvalidArgument, codes.NotFound:
		return fromMessage(st.Message(), err)
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	default:
		return err
	}
}

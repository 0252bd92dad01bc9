package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/lessonbook/internal/proto"
	"github.com/dmitrijs2005/lessonbook/internal/server/auth"
	"github.com/dmitrijs2005/lessonbook/internal/server/gate"
	"github.com/dmitrijs2005/lessonbook/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.TokenPair, error) {
	pair, err := s.sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return pairResponse(pair), nil
}

func (s *GRPCServer) Registration(ctx context.Context, req *pb.RegistrationRequest) (*pb.TokenPair, error) {
	pair, err := s.sessions.Registration(ctx, req.Email, req.Password, req.Username)
	if err != nil {
		return nil, toStatus(err)
	}
	return pairResponse(pair), nil
}

func (s *GRPCServer) IssueTokens(ctx context.Context, req *pb.IssueTokensRequest) (*pb.TokenPair, error) {
	pair, err := s.sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return pairResponse(pair), nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *emptypb.Empty) (*pb.LogoutResponse, error) {
	removed, err := s.sessions.Logout(ctx, auth.ExtractBearer(authorization(ctx)))
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.LogoutResponse{Removed: removed}, nil
}

func (s *GRPCServer) Profile(ctx context.Context, _ *emptypb.Empty) (*pb.ProfileResponse, error) {
	id, err := s.sessions.GetUserIDFromToken(ctx, auth.ExtractBearer(authorization(ctx)))
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.ProfileResponse{PrincipalId: id}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *emptypb.Empty) (*pb.ProfileResponse, error) {
	id, ok := gate.UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return &pb.ProfileResponse{PrincipalId: id}, nil
}

func pairResponse(p *services.TokenPair) *pb.TokenPair {
	return &pb.TokenPair{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

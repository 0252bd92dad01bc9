package session

import (
	"context"

	"github.com/dmitrijs2005/lessonbook/internal/authapi"
	"github.com/dmitrijs2005/lessonbook/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AuthorizationHeaderName)
	if token != "" {
		md.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

// UnaryClientInterceptor attaches the access token to every call. An
// Unauthenticated reply is answered by one refresh and one retry, except
// for methods that hand out tokens themselves.
func (m *Manager) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		token := m.AccessToken()

		err := invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
		if err == nil || authapi.IssuesTokens(method) {
			return err
		}
		if status.Code(err) != codes.Unauthenticated {
			return err
		}

		fresh, rerr := m.Refresh(ctx, token)
		if rerr != nil {
			return rerr
		}
		return invoker(withAccessToken(ctx, fresh), method, req, reply, cc, opts...)
	}
}

package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/dmitrijs2005/lessonbook/internal/server/gate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus translates service errors into gRPC statuses. Unknown errors
// become Internal without leaking their text.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenInvalid),
		errors.Is(err, gate.ErrMissingToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrEmailTaken), errors.Is(err, common.ErrUsernameTaken):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrTokenNotFound), errors.Is(err, common.ErrPrincipalNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

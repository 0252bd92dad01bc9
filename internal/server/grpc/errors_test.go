package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/dmitrijs2005/lessonbook/internal/server/gate"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrInvalidCredentials, codes.Unauthenticated},
		{common.ErrTokenExpired, codes.Unauthenticated},
		{common.ErrTokenInvalid, codes.Unauthenticated},
		{gate.ErrMissingToken, codes.Unauthenticated},
		{common.ErrEmailTaken, codes.AlreadyExists},
		{common.ErrUsernameTaken, codes.AlreadyExists},
		{common.ErrTokenNotFound, codes.NotFound},
		{common.ErrPrincipalNotFound, codes.NotFound},
		{common.ErrInvalidArgument, codes.InvalidArgument},
		{context.Canceled, codes.Canceled},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{fmt.Errorf("refresh: %w", common.ErrorInternal), codes.Internal},
		{errors.New("db password is hunter2"), codes.Internal},
	}

	for _, tt := range tests {
		st := status.Convert(toStatus(tt.err))
		assert.Equal(t, tt.code, st.Code(), "%v", tt.err)
		if tt.code == codes.Internal {
			assert.Equal(t, "internal error", st.Message())
		}
	}
}

func TestToStatus_UniformCredentialMessage(t *testing.T) {
	st := status.Convert(toStatus(common.ErrInvalidCredentials))
	assert.Equal(t, "invalid email or password", st.Message())
}

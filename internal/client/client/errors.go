package client

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/lessonbook/internal/client/session"
	"github.com/dmitrijs2005/lessonbook/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized is returned when the session is gone and the user has
	// to log in again.
	ErrUnauthorized = session.ErrUnauthorized
	ErrUnexpected   = errors.New("unexpected server response")
)

// known are the server sentinels a client can recognize by message.
var known = []error{
	common.ErrInvalidCredentials,
	common.ErrEmailTaken,
	common.ErrUsernameTaken,
	common.ErrInvalidArgument,
	common.ErrTokenExpired,
	common.ErrTokenInvalid,
	common.ErrTokenNotFound,
	common.ErrPrincipalNotFound,
}

// fromMessage returns the sentinel whose text ends msg, or fallback.
func fromMessage(msg string, fallback error) error {
	for _, e := range known {
		if strings.HasSuffix(msg, e.Error()) {
			return e
		}
	}
	return fallback
}

package client

import (
	"context"
)

// Client is the CLI's view of the auth service. Both transports keep their
// tokens in a session.Manager, so calls after Login or Register are
// authenticated and refreshed transparently.
type Client interface {
	Register(ctx context.Context, email, password, username string) error
	Login(ctx context.Context, email, password string) error
	// Logout ends the session on the server and forgets it locally. It
	// returns the number of credentials the server removed.
	Logout(ctx context.Context) (int64, error)
	Profile(ctx context.Context) (int64, error)
	Me(ctx context.Context) (int64, error)
	Close() error
}

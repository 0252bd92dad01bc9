package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lessonbook/internal/authapi"
	"github.com/dmitrijs2005/lessonbook/internal/client/client"
	"github.com/dmitrijs2005/lessonbook/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, username and password and creates the
// account. The new session starts immediately.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Register(ctx, email, string(password), username); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and starts a session, replacing any
// previous one of the same account on every device.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Login(ctx, email, string(password)); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout ends the session on the server and forgets the stored tokens.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	removed, err := a.client.Logout(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged out (%d credential(s) revoked)\n", removed)
	return nil
}

// Profile asks the server which principal the current token names.
func (a *App) Profile(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	id, err := a.client.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Principal id: %d\n", id)
	return nil
}

// Me calls the protected endpoint.
func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	id, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Authenticated as principal %d\n", id)
	return nil
}

// Status prints the claims of the cached access token. The token is decoded
// without verification; only the server can vouch for it.
func (a *App) Status(ctx context.Context) error {
	token := a.session.AccessToken()
	if token == "" {
		if a.isLoggedIn(ctx) {
			fmt.Fprintln(a.out, "Session stored; the access token is fetched on the next call")
		} else {
			fmt.Fprintln(a.out, "Not logged in")
		}
		return nil
	}

	claims, err := authapi.DecodeUnchecked(token)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Principal %d <%s>\n", claims.UserID, claims.Email)
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		state := "valid"
		if time.Now().After(exp) {
			state = "expired"
		}
		fmt.Fprintf(a.out, "Access token %s, expires %s\n", state, exp.Local().Format(time.RFC3339))
	}
	return nil
}

// describe turns client errors into short user-facing text.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "not logged in or session expired, please log in"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	default:
		return err.Error()
	}
}

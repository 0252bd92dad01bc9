// Package client contains the client-side building blocks of lessonbook.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) for the auth
//     service: Register, Login, Logout, Profile and Me.
//  2. Two implementations sharing one session.Manager: GRPCClient, which
//     installs the session interceptor, and HTTPClient, which wraps its
//     http.Client transport in session.Transport.
//  3. Local persistence bootstrap (InitDatabase) for the CLI: an SQLite file
//     with embedded goose migrations holding the refresh token.
//
// # Error Handling
//
// Server rejections come back as the sentinels of package common
// (ErrInvalidCredentials, ErrEmailTaken, ...). Transport conditions are
// ErrUnavailable and ErrUnauthorized; match all of them with errors.Is.
//
// See Also
//
//   - Interface:  Client
//   - Impls:      GRPCClient, HTTPClient
//   - DB helpers: InitDatabase
package client

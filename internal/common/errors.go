// Package common defines shared constants and sentinel errors used across
// client and server layers of lessonbook. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrInvalidArgument = errors.New("invalid argument")

	// Credential errors. The message is shared by unknown email and wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrUsernameTaken      = errors.New("user with this username already exists")

	// Token errors.
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrTokenNotFound     = errors.New("refresh token not found")
	ErrPrincipalNotFound = errors.New("principal not found")
)

// Package common contains shared constants and sentinel errors used across
// lessonbook components.
package common

// AuthorizationHeaderName is the gRPC metadata key (and, canonicalized, the
// HTTP header) carrying the access token on outbound requests.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the optional scheme prefix in front of the raw token.
const BearerScheme = "Bearer"

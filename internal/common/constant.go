// Package common contains shared constants and sentinel errors used across
// the console and the development backend.
package common

const (
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-Id"

	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)

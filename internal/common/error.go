// Package common defines shared constants and sentinel errors used across
// the petman client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Backend-level errors.
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Response shape errors.
	ErrMalformedResponse = errors.New("malformed server response")
)

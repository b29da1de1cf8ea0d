// Package transport is the outbound request pipeline of the petman client:
// a chain of http.RoundTripper stages that tags requests, attaches the
// bearer credential, performs a single refresh-and-retry cycle on 401, and
// reports transport-level failures to the health machinery.
package transport

import (
	"context"
	"net/http"

	"github.com/petmanager/petman/internal/logging"
	"github.com/petmanager/petman/internal/session"
)

// SessionSource is the slice of the session manager the pipeline needs.
// *session.Manager satisfies it.
type SessionSource interface {
	AccessToken() string
	RefreshToken() string
	CheckAuth() bool
	Refresh(ctx context.Context) error
	Logout(ctx context.Context)
}

// FailureReporter receives transport-level failures observed by the
// pipeline. Status 0 means a connection failure.
type FailureReporter interface {
	ObserveTransportFailure(status int, message string)
}

// NewPipeline assembles the full stage chain over base (nil means
// http.DefaultTransport) and returns a ready-to-use client:
//
//	request id -> auth (bearer + 401 retry) -> health observer -> base
func NewPipeline(
	base http.RoundTripper,
	sess SessionSource,
	authPath string,
	reporter FailureReporter,
	onExpired func(reason session.Reason),
	log logging.Logger,
) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}

	var rt http.RoundTripper = &HealthTransport{
		Base:     base,
		Reporter: reporter,
		AuthPath: authPath,
		Log:      log.With("component", "pipeline"),
	}
	rt = &AuthTransport{
		Base:             rt,
		Session:          sess,
		AuthPath:         authPath,
		OnSessionExpired: onExpired,
		Log:              log.With("component", "pipeline"),
	}
	rt = &RequestIDTransport{Base: rt}

	return &http.Client{Transport: rt}
}

package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/petmanager/petman/internal/health"
	"github.com/petmanager/petman/internal/logging"
)

// HealthTransport watches responses and transport errors flowing through the
// pipeline and reports "down"-classified outcomes to the FailureReporter.
// Requests and responses pass through unchanged; authentication requests are
// skipped (their failures are the auth stage's business).
type HealthTransport struct {
	Base     http.RoundTripper
	Reporter FailureReporter
	AuthPath string
	Log      logging.Logger
}

func (t *HealthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.Base.RoundTrip(req)

	if t.AuthPath != "" && strings.Contains(req.URL.Path, t.AuthPath) {
		return resp, err
	}

	if err != nil {
		// a cancelled request says nothing about the backend
		if !errors.Is(err, context.Canceled) {
			t.report(req, 0)
		}
		return nil, err
	}

	if health.DownStatus(resp.StatusCode) {
		t.report(req, resp.StatusCode)
	}
	return resp, nil
}

func (t *HealthTransport) report(req *http.Request, status int) {
	t.Log.Warn(req.Context(), "transport failure observed",
		"status", status, "url", req.URL.Path)
	if t.Reporter != nil {
		t.Reporter.ObserveTransportFailure(status, health.StatusMessage(status))
	}
}

package transport

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/petmanager/petman/internal/logging"
	"github.com/petmanager/petman/internal/session"
)

// AuthTransport attaches the current access token as a bearer credential and
// performs at most one refresh-and-retry cycle when a request comes back 401.
//
// Requests targeting the authentication endpoints bypass the stage entirely,
// and requests without a usable token are sent unauthenticated rather than
// blocked waiting for one.
type AuthTransport struct {
	Base    http.RoundTripper
	Session SessionSource

	// AuthPath marks the authentication endpoints (login, refresh).
	AuthPath string

	// OnSessionExpired runs after the stage has logged the session out;
	// callers use it to redirect to the login view with the failure reason.
	OnSessionExpired func(reason session.Reason)

	Log logging.Logger
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.isAuthRequest(req) {
		return t.Base.RoundTrip(req)
	}

	out := req
	if t.Session.CheckAuth() {
		out = withBearer(req, t.Session.AccessToken())
	}

	resp, err := t.Base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	ctx := req.Context()

	if t.Session.RefreshToken() == "" {
		t.expire(req, session.ReasonNoRefreshToken)
		return resp, nil
	}

	if rerr := t.Session.Refresh(ctx); rerr != nil {
		var re *session.RefreshError
		if errors.As(rerr, &re) && re.Terminal() {
			t.expire(req, re.Reason)
		}
		return resp, nil
	}

	retry, ok := rewind(req)
	if !ok {
		// one-shot body, cannot be replayed
		return resp, nil
	}

	drain(resp)
	retry = withBearer(retry, t.Session.AccessToken())
	// exactly one retry, whatever its outcome
	return t.Base.RoundTrip(retry)
}

func (t *AuthTransport) isAuthRequest(req *http.Request) bool {
	return t.AuthPath != "" && strings.Contains(req.URL.Path, t.AuthPath)
}

func (t *AuthTransport) expire(req *http.Request, reason session.Reason) {
	ctx := req.Context()
	t.Log.Warn(ctx, "session expired", "reason", string(reason), "url", req.URL.Path)
	t.Session.Logout(ctx)
	if t.OnSessionExpired != nil {
		t.OnSessionExpired(reason)
	}
}

// withBearer returns a clone of req with the Authorization header set. The
// clone shares the body; use rewind first when the body was already consumed.
func withBearer(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// rewind clones req with a fresh, replayable body. Requests whose body
// cannot be re-materialized (no GetBody) report ok=false.
func rewind(req *http.Request) (*http.Request, bool) {
	if req.Body == nil || req.Body == http.NoBody {
		return req.Clone(req.Context()), true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	r := req.Clone(req.Context())
	r.Body = body
	return r, true
}

func drain(resp *http.Response) {
	if resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}

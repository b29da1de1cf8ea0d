package session

import "fmt"

// Reason tags a refresh failure. Terminal reasons force a logout and are
// carried to the login view as routing context.
type Reason string

const (
	ReasonNoRefreshToken    Reason = "no_refresh_token"
	ReasonAlreadyInProgress Reason = "already_in_progress"
	ReasonMaxAttempts       Reason = "max_attempts"
	ReasonRefreshExpired    Reason = "refresh_expired"
	ReasonRefreshFailed     Reason = "refresh_failed"
)

// RefreshError is the typed failure of Manager.Refresh.
type RefreshError struct {
	Reason Reason
	Err    error
}

func (e *RefreshError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("refresh failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("refresh failed (%s)", e.Reason)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// Terminal reports whether the failure ended the session: credentials are
// cleared and the caller must redirect to login. AlreadyInProgress is a
// synchronous rejection with no state change, and a plain transient failure
// leaves the refresh token in place for another attempt.
func (e *RefreshError) Terminal() bool {
	switch e.Reason {
	case ReasonNoRefreshToken, ReasonMaxAttempts, ReasonRefreshExpired:
		return true
	}
	return false
}

// UserMessage is the human-readable text shown on the login view for a
// terminal refresh failure.
func (r Reason) UserMessage() string {
	switch r {
	case ReasonRefreshExpired:
		return "Your session has expired. Please sign in again."
	case ReasonMaxAttempts:
		return "The session could not be renewed. Please sign in again."
	case ReasonRefreshFailed:
		return "Session renewal failed. Please sign in again."
	default:
		return "Please sign in."
	}
}

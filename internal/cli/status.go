package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petmanager/petman/internal/common"
)

// Status prints the session and backend health at a glance.
func (a *App) Status(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintf(a.out, "Session: active, token expires %s\n",
			a.session.ExpiresAt().Format(time.RFC3339))
	} else {
		fmt.Fprintln(a.out, "Session: none")
	}

	st := a.monitor.CurrentStatus()
	state := "up"
	if !st.IsHealthy {
		state = "down"
	}
	fmt.Fprintf(a.out, "Backend: %s", state)
	if st.ConsecutiveFailures > 0 {
		fmt.Fprintf(a.out, " (%d consecutive failures: %s)", st.ConsecutiveFailures, st.Message)
	}
	if !st.LastCheck.IsZero() {
		fmt.Fprintf(a.out, ", last check %s", st.LastCheck.Format(time.RFC3339))
	}
	fmt.Fprintln(a.out)
	return nil
}

// CheckNow forces an out-of-cycle probe. On success the failure counter
// is reset so the next poll can restore the previous screen at once.
func (a *App) CheckNow(ctx context.Context) error {
	fmt.Fprintln(a.out, "Probing backend...")
	if a.monitor.ForceCheck(ctx) {
		a.monitor.ResetFailureCount()
		fmt.Fprintln(a.out, "Backend responded.")
	} else {
		fmt.Fprintln(a.out, "Still unreachable.")
	}
	return nil
}

// reportErr translates API failures into console messages. It returns the
// error so callers can still propagate it.
func (a *App) reportErr(ctx context.Context, action string, err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		fmt.Fprintln(a.out, "Not found.")
	case errors.Is(err, common.ErrUnauthorized):
		fmt.Fprintln(a.out, "Not authorized. Try 'login' again.")
	case errors.Is(err, common.ErrUnavailable):
		fmt.Fprintln(a.out, "Service unavailable, try again shortly.")
	default:
		fmt.Fprintf(a.out, "Error %s: %v\n", action, err)
	}
	a.log.Warn(ctx, action, "error", err)
	return err
}

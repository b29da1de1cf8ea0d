package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/petmanager/petman/internal/common"
)

// Login prompts for credentials and opens a session. A failed attempt
// leaves the current state untouched.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.session.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			fmt.Fprintln(a.out, "Invalid email or password.")
		} else {
			fmt.Fprintln(a.out, "Login failed:", err)
		}
		a.log.Warn(ctx, "login failed", "error", err)
		return err
	}

	name := email
	if user != nil && user.Name != "" {
		name = user.Name
	}
	fmt.Fprintf(a.out, "Welcome, %s.\n", name)
	a.NavigateTo(routeHome)
	return nil
}

// Logout drops the session and the persisted credentials.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	a.NavigateTo(routeLogin)
	return nil
}

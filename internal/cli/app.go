// Package cli is the interactive terminal front end of the pet manager
// client. It wires the credential store, session manager, health monitor,
// degradation coordinator and request pipeline together and drives them
// from a small read-eval-print loop.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/petmanager/petman/internal/api"
	"github.com/petmanager/petman/internal/config"
	"github.com/petmanager/petman/internal/credstore"
	"github.com/petmanager/petman/internal/degrade"
	"github.com/petmanager/petman/internal/health"
	"github.com/petmanager/petman/internal/logging"
	"github.com/petmanager/petman/internal/session"
	"github.com/petmanager/petman/internal/transport"
)

const authClientTimeout = 15 * time.Second

// App owns every long-lived component of the client. It also acts as the
// degradation coordinator's navigator and notifier: "navigation" in a
// terminal app means remembering the active screen and repainting it.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	session *session.Manager
	monitor *health.Monitor
	coord   *degrade.Coordinator
	api     *api.Client

	reader *bufio.Reader
	out    io.Writer

	mu    sync.Mutex
	route string
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := credstore.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}
	creds := credstore.NewCredentials(db)

	// Auth calls run on a bare client so a refresh cannot recurse
	// through the authorized pipeline.
	authClient := api.NewAuthClient(&http.Client{Timeout: authClientTimeout}, cfg.APIBaseURL, cfg.AuthPath)

	sess, err := session.New(ctx, authClient, creds, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	app := &App{
		config:  cfg,
		log:     log,
		db:      db,
		session: sess,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		route:   routeHome,
	}

	app.monitor = health.New(cfg.APIBaseURL, health.Config{
		Interval: cfg.HealthInterval,
		Timeout:  cfg.HealthTimeout,
	}, log)
	app.coord = degrade.New(app, app, app.monitor, log)

	pipeline := transport.NewPipeline(nil, sess, cfg.AuthPath, app.coord, app.onSessionExpired, log)
	app.api = api.NewClient(pipeline, cfg.APIBaseURL)

	return app, nil
}

// Run starts the background machinery and blocks in the REPL until the
// user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.monitor.StartMonitoring(ctx)
	defer a.monitor.StopMonitoring()
	go a.coord.Run(ctx)

	fmt.Fprintln(a.out, "Welcome to petman (type 'help' for commands)")
	a.runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// Close releases the session manager and the credential store.
func (a *App) Close() {
	a.session.Close()
	if err := a.db.Close(); err != nil {
		a.log.Error(context.Background(), "closing credential store", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.CheckAuth()
}

// onSessionExpired runs when the pipeline gives up on re-authentication.
// The session is already cleared at that point, so only the screen and
// the user remain to be told.
func (a *App) onSessionExpired(reason session.Reason) {
	fmt.Fprintf(a.out, "\nSession ended: %s\n", reason.UserMessage())
	a.NavigateTo(routeLogin)
}

// CurrentRoute implements degrade.Navigator.
func (a *App) CurrentRoute() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

// NavigateTo implements degrade.Navigator. Entering the unavailable
// route paints the degraded screen; anything else just records where
// the user is.
func (a *App) NavigateTo(route string) {
	a.mu.Lock()
	from := a.route
	a.route = route
	a.mu.Unlock()

	switch {
	case route == degrade.RouteUnavailable:
		fmt.Fprintln(a.out, "\nThe service looks unavailable. Type 'check' to retry.")
	case from == degrade.RouteUnavailable:
		fmt.Fprintln(a.out, "\nService is back. Carry on.")
	}
}

// Warn implements degrade.Notifier.
func (a *App) Warn(message string) {
	fmt.Fprintf(a.out, "Warning: %s\n", message)
}

func (a *App) unavailable() bool {
	return a.coord.Degraded()
}

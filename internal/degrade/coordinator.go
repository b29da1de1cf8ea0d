// Package degrade switches the app to a degraded mode when the backend
// looks unreachable and restores the previous screen once it recovers.
package degrade

import (
	"context"
	"sync"

	"github.com/petmanager/petman/internal/health"
	"github.com/petmanager/petman/internal/logging"
)

// RouteUnavailable is the screen shown while the backend is considered down.
const RouteUnavailable = "/indisponivel"

// transportFailureThreshold is how many consecutive probe failures a
// transport-level error must coincide with before the app degrades.
// A status of zero (connection refused, DNS failure) degrades immediately.
const transportFailureThreshold = 2

// Navigator moves the UI between screens.
type Navigator interface {
	CurrentRoute() string
	NavigateTo(route string)
}

// Notifier surfaces transient warnings without leaving the current screen.
type Notifier interface {
	Warn(message string)
}

// HealthSource is the slice of the liveness monitor the coordinator needs.
type HealthSource interface {
	CurrentStatus() health.Status
	ForceCheck(ctx context.Context) bool
	StatusStream() (<-chan health.Status, func())
}

// Coordinator reacts to transport failures and health transitions.
// It remembers the route the user was on when the app degrades and
// navigates back to it on recovery.
type Coordinator struct {
	nav    Navigator
	notify Notifier
	src    HealthSource
	log    logging.Logger

	mu          sync.Mutex
	degraded    bool
	returnRoute string
}

func New(nav Navigator, notify Notifier, src HealthSource, log logging.Logger) *Coordinator {
	return &Coordinator{nav: nav, notify: notify, src: src, log: log}
}

// ObserveTransportFailure is called by the request pipeline whenever a
// request errors at the connection level or returns an outage status.
// It decides between degrading right away and showing a warning, then
// kicks an out-of-cycle probe so the monitor converges faster.
func (c *Coordinator) ObserveTransportFailure(statusCode int, message string) {
	st := c.src.CurrentStatus()
	if statusCode == 0 || st.ConsecutiveFailures >= transportFailureThreshold {
		c.enterDegraded()
	} else if c.notify != nil {
		c.notify.Warn(message)
	}
	go c.src.ForceCheck(context.Background())
}

// Degraded reports whether the coordinator currently holds the app in
// the unavailable screen.
func (c *Coordinator) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

// Run consumes health transitions until ctx is cancelled, restoring the
// saved route once the backend is healthy again with a clean failure
// counter.
func (c *Coordinator) Run(ctx context.Context) {
	stream, cancel := c.src.StatusStream()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-stream:
			if !ok {
				return
			}
			c.onStatus(st)
		}
	}
}

func (c *Coordinator) onStatus(st health.Status) {
	if !st.IsHealthy {
		c.enterDegraded()
		return
	}
	if st.ConsecutiveFailures == 0 {
		c.leaveDegraded()
	}
}

func (c *Coordinator) enterDegraded() {
	c.mu.Lock()
	if c.degraded {
		c.mu.Unlock()
		return
	}
	c.degraded = true
	route := c.nav.CurrentRoute()
	if route != RouteUnavailable {
		c.returnRoute = route
	}
	c.mu.Unlock()

	c.log.Warn(context.Background(), "backend unavailable, entering degraded mode", "return_route", route)
	c.nav.NavigateTo(RouteUnavailable)
}

func (c *Coordinator) leaveDegraded() {
	c.mu.Lock()
	if !c.degraded {
		c.mu.Unlock()
		return
	}
	c.degraded = false
	route := c.returnRoute
	c.returnRoute = ""
	c.mu.Unlock()

	if route == "" {
		route = "/"
	}
	c.log.Info(context.Background(), "backend recovered, restoring route", "route", route)
	c.nav.NavigateTo(route)
}

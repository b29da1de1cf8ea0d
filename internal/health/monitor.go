// Package health watches the availability of the pet manager backend.
// A periodic lightweight probe feeds a rolling consecutive-failure count;
// the derived health state tolerates isolated failures (hysteresis) and
// recovers on the first successful probe.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/petmanager/petman/internal/logging"
)

const (
	DefaultProbeInterval = 60 * time.Second
	DefaultProbeTimeout  = 10 * time.Second

	// MaxConsecutiveFailures is the hysteresis threshold: the state flips to
	// unhealthy only once this many probes in a row have failed.
	MaxConsecutiveFailures = 3
)

// Status is a snapshot of the backend's observed health.
type Status struct {
	IsHealthy           bool
	LastCheck           time.Time
	ConsecutiveFailures int
	Message             string
}

// DownStatus reports whether an HTTP status code (0 meaning connection
// failure) indicates the backend is unreachable. Only the enumerated codes
// count as down; anything else fails open.
func DownStatus(code int) bool {
	switch code {
	case 0, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// StatusMessage is the human-readable reason attached to a failed probe or
// transport failure.
func StatusMessage(code int) string {
	switch {
	case code == 0:
		return "The server is not responding. Check your internet connection."
	case code == http.StatusBadGateway:
		return "Server gateway error."
	case code == http.StatusServiceUnavailable:
		return "The server is temporarily unavailable. Try again in a few minutes."
	case code == http.StatusGatewayTimeout:
		return "Connection to the server timed out."
	case code >= 500:
		return "Internal server error."
	default:
		return "Could not reach the server."
	}
}

// Monitor probes a single endpoint and owns the Health Status Record.
// All reads by other components go through CurrentStatus or StatusStream.
type Monitor struct {
	url      string
	client   *http.Client
	interval time.Duration
	timeout  time.Duration
	log      logging.Logger

	mu      sync.Mutex
	status  Status
	running bool
	cancel  context.CancelFunc
	subs    []chan Status

	// now is a test seam.
	now func() time.Time
}

// Config carries optional Monitor settings; zero fields use defaults.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
	Client   *http.Client
}

// New builds a Monitor for url. The monitor starts in the healthy state with
// zero failures and does not probe until StartMonitoring or ForceCheck.
func New(url string, cfg Config, log logging.Logger) *Monitor {
	if cfg.Interval == 0 {
		cfg.Interval = DefaultProbeInterval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultProbeTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}

	m := &Monitor{
		url:      url,
		client:   cfg.Client,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		log:      log.With("component", "health"),
		now:      time.Now,
	}
	m.status = Status{IsHealthy: true, LastCheck: m.now()}
	return m
}

// Probe issues one lightweight HEAD request and applies the outcome to the
// status record. It never returns an error: every failure becomes a state
// update with a message. Statuses like 404, 405 and 401 prove the server is
// answering and count as up; only timeouts, connection failures and
// 502/503/504 count as down.
func (m *Monitor) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.url, nil)
	if err != nil {
		return m.applyResult(false, StatusMessage(0))
	}

	resp, err := m.client.Do(req)
	if err != nil {
		// timeout or connection failure
		return m.applyResult(false, StatusMessage(0))
	}
	defer resp.Body.Close() //nolint:errcheck

	if DownStatus(resp.StatusCode) {
		return m.applyResult(false, StatusMessage(resp.StatusCode))
	}
	return m.applyResult(true, "")
}

// StartMonitoring launches the periodic probe loop: one immediate probe,
// then one every interval until StopMonitoring or ctx cancellation. Calling
// it while already running is a no-op.
func (m *Monitor) StartMonitoring(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	go m.loop(ctx)
}

func (m *Monitor) loop(ctx context.Context) {
	m.Probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !m.Probe(ctx) {
				m.log.Warn(ctx, "backend is not responding", "url", m.url)
			}
		case <-ctx.Done():
			return
		}
	}
}

// StopMonitoring cancels the periodic probe schedule. An in-flight probe is
// not interrupted; its result, when it arrives, is still applied. Calling it
// while not running is a no-op.
func (m *Monitor) StopMonitoring() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	m.cancel()
	m.cancel = nil
}

// ForceCheck performs an out-of-band probe immediately, independent of the
// periodic schedule.
func (m *Monitor) ForceCheck(ctx context.Context) bool {
	return m.Probe(ctx)
}

// ResetFailureCount zeroes the consecutive-failure counter without probing.
// Used after the user confirms manual recovery.
func (m *Monitor) ResetFailureCount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.ConsecutiveFailures = 0
	m.notifyLocked()
}

// CurrentStatus returns a snapshot of the health record.
func (m *Monitor) CurrentStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// StatusStream subscribes to health updates with latest-value semantics:
// an unread stale status is replaced, never queued. The current status is
// delivered immediately. The returned func unsubscribes and closes the
// channel.
func (m *Monitor) StatusStream() (<-chan Status, func()) {
	ch := make(chan Status, 1)

	m.mu.Lock()
	m.subs = append(m.subs, ch)
	ch <- m.status
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.subs {
			if sub == ch {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// applyResult folds one probe outcome into the status record atomically.
// Up resets the failure count; down increments it. The derived IsHealthy
// stays true until MaxConsecutiveFailures is reached.
func (m *Monitor) applyResult(up bool, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	failures := 0
	if !up {
		failures = m.status.ConsecutiveFailures + 1
	}

	m.status = Status{
		IsHealthy:           up || failures < MaxConsecutiveFailures,
		LastCheck:           m.now(),
		ConsecutiveFailures: failures,
		Message:             message,
	}
	m.notifyLocked()
	return up
}

func (m *Monitor) notifyLocked() {
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- m.status
	}
}

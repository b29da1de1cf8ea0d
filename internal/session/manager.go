// Package session owns the credential lifecycle of the petman client:
// login, proactive token renewal, bounded refresh with a single-flight
// guard, logout, and synchronous plus reactive authentication state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/petmanager/petman/internal/common"
	"github.com/petmanager/petman/internal/credstore"
	"github.com/petmanager/petman/internal/logging"
	"github.com/petmanager/petman/internal/models"
)

const (
	// MaxRefreshAttempts bounds consecutive refresh failures. Reaching it
	// clears the credential record.
	MaxRefreshAttempts = 2

	// renewalLead is how long before expiry the proactive renewal fires.
	renewalLead = time.Minute

	// minRenewalRunway is the minimum token lifetime worth renewing. Below
	// it the session is left to expire naturally.
	minRenewalRunway = 2 * time.Minute

	renewalCallTimeout = 15 * time.Second
)

// AuthAPI is the slice of the backend the session manager talks to.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
}

// Manager holds the credential record (mirrored in memory, persisted in the
// credstore) and its runtime state. All mutations go through its methods;
// other components read through the accessors or the AuthChanged stream.
type Manager struct {
	api   AuthAPI
	creds *credstore.Credentials
	log   logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	pending      bool
	failures     int
	renewal      *time.Timer
	subs         []chan bool

	// now is a test seam.
	now func() time.Time
}

// New builds a Manager and restores its state from the credential store:
// a live stored token re-arms renewal scheduling, an expired one is cleared.
func New(ctx context.Context, api AuthAPI, creds *credstore.Credentials, log logging.Logger) (*Manager, error) {
	m := &Manager{
		api:   api,
		creds: creds,
		log:   log.With("component", "session"),
		now:   time.Now,
	}

	rec, err := creds.Load(ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case rec.HasAccessToken() && m.now().Before(rec.ExpiresAt):
		m.mu.Lock()
		m.accessToken = rec.AccessToken
		m.refreshToken = rec.RefreshToken
		m.expiresAt = rec.ExpiresAt
		m.scheduleRenewalLocked()
		m.mu.Unlock()
	case rec.HasAccessToken():
		// stored token already expired
		if err := creds.Clear(ctx); err != nil {
			m.log.Warn(ctx, "failed to clear expired credentials", "error", err)
		}
	case rec.RefreshToken != "":
		m.refreshToken = rec.RefreshToken
	}

	return m, nil
}

// Login authenticates against the backend. On success the credential record
// is replaced atomically and renewal scheduling is armed. Backend errors are
// returned verbatim and leave credential state untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	pair, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.applyPairLocked(ctx, pair); err != nil {
		return nil, err
	}
	return pair.User, nil
}

// CheckAuth reports whether a non-expired access token is present. It is
// side-effect-free and performs no I/O, so it is safe as a command guard.
func (m *Manager) CheckAuth() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authLocked()
}

// AuthChanged subscribes to the authentication state. The channel carries
// the latest value only (missed intermediate states are not buffered) and
// receives the current state immediately. The returned func unsubscribes
// and closes the channel.
func (m *Manager) AuthChanged() (<-chan bool, func()) {
	ch := make(chan bool, 1)

	m.mu.Lock()
	m.subs = append(m.subs, ch)
	ch <- m.authLocked()
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

// AccessToken returns the raw stored access token ("" when absent). It may
// already be expired; combine with CheckAuth for a usable bearer credential.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}

// RefreshToken returns the raw stored refresh token ("" when absent).
func (m *Manager) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshToken
}

// ExpiresAt returns the access token expiry instant (zero when absent).
func (m *Manager) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAt
}

// Refresh exchanges the refresh token for a new token pair. At most one
// refresh is in flight at a time; a second concurrent caller is rejected
// synchronously with ReasonAlreadyInProgress and must re-check session state
// once the in-flight call resolves. Failures are bounded by
// MaxRefreshAttempts; terminal failures clear the credential record.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.failures >= MaxRefreshAttempts {
		m.clearLocked(ctx)
		m.mu.Unlock()
		return &RefreshError{Reason: ReasonMaxAttempts}
	}
	if m.refreshToken == "" {
		m.clearLocked(ctx)
		m.mu.Unlock()
		return &RefreshError{Reason: ReasonNoRefreshToken}
	}
	if m.pending {
		m.mu.Unlock()
		return &RefreshError{Reason: ReasonAlreadyInProgress}
	}
	m.pending = true
	refreshToken := m.refreshToken
	m.mu.Unlock()

	pair, err := m.api.Refresh(ctx, refreshToken)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = false

	if err != nil {
		m.failures++
		if errors.Is(err, common.ErrUnauthorized) {
			// the refresh token itself was rejected
			m.clearLocked(ctx)
			return &RefreshError{Reason: ReasonRefreshExpired, Err: err}
		}
		if m.failures >= MaxRefreshAttempts {
			m.clearLocked(ctx)
			return &RefreshError{Reason: ReasonMaxAttempts, Err: err}
		}
		m.log.Warn(ctx, "token refresh failed, keeping refresh token for another attempt",
			"attempt", m.failures, "error", err)
		return &RefreshError{Reason: ReasonRefreshFailed, Err: err}
	}

	if err := m.applyPairLocked(ctx, pair); err != nil {
		m.failures++
		return &RefreshError{Reason: ReasonRefreshFailed, Err: err}
	}
	m.log.Info(ctx, "token refreshed")
	return nil
}

// Logout clears the credential record, cancels any scheduled renewal and
// resets the failure counter. Navigation is the caller's responsibility.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked(ctx)
	m.failures = 0
}

// Close cancels the renewal timer. State is left untouched.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelRenewalLocked()
}

func (m *Manager) authLocked() bool {
	return m.accessToken != "" && m.now().Before(m.expiresAt)
}

// applyPairLocked replaces the credential record with a fresh token pair,
// resets the failure counter, persists the record and re-arms renewal.
func (m *Manager) applyPairLocked(ctx context.Context, pair models.TokenPair) error {
	expiresAt, err := tokenExpiry(pair, m.now())
	if err != nil {
		return err
	}

	m.accessToken = pair.AccessToken
	m.refreshToken = pair.RefreshToken
	m.expiresAt = expiresAt
	m.failures = 0

	rec := credstore.Record{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    expiresAt,
	}
	if err := m.creds.Save(ctx, rec); err != nil {
		m.log.Error(ctx, "failed to persist credentials", "error", err)
	}

	m.scheduleRenewalLocked()
	m.notifyLocked()
	return nil
}

// clearLocked destroys the credential record in memory and in the store and
// cancels any scheduled renewal. The failure counter is left as is; Logout
// and a successful login reset it.
func (m *Manager) clearLocked(ctx context.Context) {
	m.cancelRenewalLocked()
	m.accessToken = ""
	m.refreshToken = ""
	m.expiresAt = time.Time{}
	if err := m.creds.Clear(ctx); err != nil {
		m.log.Error(ctx, "failed to clear credentials", "error", err)
	}
	m.notifyLocked()
}

// scheduleRenewalLocked arms a one-shot renewal timer firing renewalLead
// before expiry. Tokens with less than minRenewalRunway of lifetime are not
// worth renewing and expire naturally. Any previously armed timer is
// cancelled first: at most one timer is live.
func (m *Manager) scheduleRenewalLocked() {
	m.cancelRenewalLocked()

	ttl := m.expiresAt.Sub(m.now())
	if ttl < minRenewalRunway {
		m.log.Debug(context.Background(), "token lifetime too short, skipping renewal scheduling", "ttl", ttl)
		return
	}

	delay := ttl - renewalLead
	if delay < 0 {
		delay = 0
	}
	m.renewal = time.AfterFunc(delay, m.renewalFire)
}

func (m *Manager) cancelRenewalLocked() {
	if m.renewal != nil {
		m.renewal.Stop()
		m.renewal = nil
	}
}

// renewalFire runs when the renewal timer elapses. Preconditions are
// re-validated: the refresh token may have been cleared and the failure
// counter may have been exhausted since the timer was armed.
func (m *Manager) renewalFire() {
	m.mu.Lock()
	m.renewal = nil
	if m.refreshToken == "" || m.failures >= MaxRefreshAttempts {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), renewalCallTimeout)
	defer cancel()

	if err := m.Refresh(ctx); err != nil {
		m.log.Warn(ctx, "scheduled token renewal failed", "error", err)
	}
}

// notifyLocked pushes the current authentication state to all subscribers
// with latest-value semantics: a stale unread value is replaced, never
// queued behind.
func (m *Manager) notifyLocked() {
	v := m.authLocked()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// tokenExpiry derives the absolute expiry instant of a token pair. When the
// backend omits expiresIn, the access token's own exp claim is used; it is
// read unverified (the client holds no signing key) and only drives
// scheduling, never authorization decisions.
func tokenExpiry(pair models.TokenPair, now time.Time) (time.Time, error) {
	if pair.AccessToken == "" {
		return time.Time{}, fmt.Errorf("%w: missing access token", common.ErrMalformedResponse)
	}
	if pair.ExpiresIn > 0 {
		return now.Add(time.Duration(pair.ExpiresIn) * time.Second), nil
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(pair.AccessToken, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: no expiresIn and token is not a JWT: %v", common.ErrMalformedResponse, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: token carries no exp claim", common.ErrMalformedResponse)
	}
	return claims.ExpiresAt.Time, nil
}

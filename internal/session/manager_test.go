package session

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/petmanager/petman/internal/common"
	"github.com/petmanager/petman/internal/credstore"
	"github.com/petmanager/petman/internal/logging"
	"github.com/petmanager/petman/internal/models"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupCreds(t *testing.T) *credstore.Credentials {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE credentials (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`)
	require.NoError(t, err)
	return credstore.NewCredentials(db)
}

// ---- fake auth API ----

type fakeAuthAPI struct {
	mu sync.Mutex

	LoginPair models.TokenPair
	LoginErr  error

	RefreshPair models.TokenPair
	RefreshErr  error

	// when set, Refresh blocks until the channel is closed
	RefreshGate    chan struct{}
	RefreshEntered chan struct{}

	LoginCalls   int
	RefreshCalls int

	LastLoginEmail   string
	LastRefreshToken string
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	f.mu.Lock()
	f.LoginCalls++
	f.LastLoginEmail = email
	f.mu.Unlock()
	return f.LoginPair, f.LoginErr
}

func (f *fakeAuthAPI) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	f.mu.Lock()
	f.RefreshCalls++
	f.LastRefreshToken = refreshToken
	gate := f.RefreshGate
	entered := f.RefreshEntered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return f.RefreshPair, f.RefreshErr
}

func (f *fakeAuthAPI) refreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.RefreshCalls
}

func newManager(t *testing.T, api *fakeAuthAPI) (*Manager, *credstore.Credentials, *time.Time) {
	t.Helper()
	creds := setupCreds(t)

	m, err := New(context.Background(), api, creds, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(m.Close)

	now := time.Now()
	m.now = func() time.Time { return now }
	return m, creds, &now
}

func pair(access, refresh string, expiresIn int64) models.TokenPair {
	return models.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: expiresIn}
}

// ---- TESTS ----

func TestLogin_SetsAuthenticatedState(t *testing.T) {
	api := &fakeAuthAPI{LoginPair: pair("acc", "ref", 900)}
	m, _, now := newManager(t, api)

	require.False(t, m.CheckAuth())

	_, err := m.Login(context.Background(), "user@example.com", "pw")
	require.NoError(t, err)

	require.True(t, m.CheckAuth())
	require.Equal(t, "acc", m.AccessToken())
	require.Equal(t, "ref", m.RefreshToken())

	// simulated time passes the expiry instant
	*now = now.Add(901 * time.Second)
	require.False(t, m.CheckAuth())
}

func TestLogin_ErrorLeavesStateUntouched(t *testing.T) {
	boom := errors.New("invalid credentials")
	api := &fakeAuthAPI{LoginErr: boom}
	m, creds, _ := newManager(t, api)

	_, err := m.Login(context.Background(), "user@example.com", "bad")
	require.ErrorIs(t, err, boom)

	require.False(t, m.CheckAuth())
	rec, err := creds.Load(context.Background())
	require.NoError(t, err)
	require.False(t, rec.HasAccessToken())
}

func TestLogin_PersistsCredentials(t *testing.T) {
	api := &fakeAuthAPI{LoginPair: pair("acc", "ref", 900)}
	m, creds, _ := newManager(t, api)

	_, err := m.Login(context.Background(), "user@example.com", "pw")
	require.NoError(t, err)

	// a fresh manager over the same store restores the session
	m.Close()
	m2, err := New(context.Background(), api, creds, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(m2.Close)

	require.True(t, m2.CheckAuth())
	require.Equal(t, "acc", m2.AccessToken())
}

func TestNew_ClearsExpiredStoredCredentials(t *testing.T) {
	creds := setupCreds(t)
	require.NoError(t, creds.Save(context.Background(), credstore.Record{
		AccessToken:  "stale",
		RefreshToken: "ref",
		ExpiresAt:    time.Now().Add(-time.Hour),
	}))

	m, err := New(context.Background(), &fakeAuthAPI{}, creds, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(m.Close)

	require.False(t, m.CheckAuth())
	rec, err := creds.Load(context.Background())
	require.NoError(t, err)
	require.False(t, rec.HasAccessToken())
	require.Empty(t, rec.RefreshToken)
}

// renewalArmed reports whether a renewal timer is currently scheduled.
func (m *Manager) renewalArmed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renewal != nil
}

func TestRenewal_NotScheduledBelowMinimumRunway(t *testing.T) {
	// 100 seconds of lifetime is below the 2-minute runway: no timer armed.
	api := &fakeAuthAPI{LoginPair: pair("acc", "ref", 100)}
	m, _, _ := newManager(t, api)

	_, err := m.Login(context.Background(), "user@example.com", "pw")
	require.NoError(t, err)
	require.False(t, m.renewalArmed())
}

func TestRenewal_ScheduledWithEnoughRunway(t *testing.T) {
	api := &fakeAuthAPI{LoginPair: pair("acc", "ref", 900)}
	m, _, _ := newManager(t, api)

	_, err := m.Login(context.Background(), "user@example.com", "pw")
	require.NoError(t, err)
	require.True(t, m.renewalArmed())

	// logout cancels the timer
	m.Logout(context.Background())
	require.False(t, m.renewalArmed())
}

func TestRenewalFire_RevalidatesPreconditions(t *testing.T) {
	api := &fakeAuthAPI{RefreshPair: pair("acc2", "ref2", 900)}
	m, _, _ := newManager(t, api)

	// no refresh token: firing must not reach the network
	m.renewalFire()
	require.Equal(t, 0, api.refreshCalls())

	m.mu.Lock()
	m.refreshToken = "ref"
	m.mu.Unlock()

	m.renewalFire()
	require.Equal(t, 1, api.refreshCalls())
	require.True(t, m.CheckAuth())
}

func TestRefresh_NoRefreshToken(t *testing.T) {
	api := &fakeAuthAPI{}
	m, _, _ := newManager(t, api)

	err := m.Refresh(context.Background())
	var rerr *RefreshError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ReasonNoRefreshToken, rerr.Reason)
	require.True(t, rerr.Terminal())
	require.Equal(t, 0, api.refreshCalls())
}

func TestRefresh_SingleFlight(t *testing.T) {
	api := &fakeAuthAPI{
		RefreshPair:    pair("acc2", "ref2", 900),
		RefreshGate:    make(chan struct{}),
		RefreshEntered: make(chan struct{}, 1),
	}
	m, _, _ := newManager(t, api)
	m.mu.Lock()
	m.refreshToken = "ref"
	m.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- m.Refresh(context.Background()) }()

	// wait until the first refresh is inside the network call
	<-api.RefreshEntered

	err := m.Refresh(context.Background())
	var rerr *RefreshError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ReasonAlreadyInProgress, rerr.Reason)
	require.False(t, rerr.Terminal())

	close(api.RefreshGate)
	require.NoError(t, <-done)
	require.Equal(t, 1, api.refreshCalls())
	require.True(t, m.CheckAuth())
}

func TestRefresh_TransientFailureKeepsRefreshToken(t *testing.T) {
	api := &fakeAuthAPI{RefreshErr: errors.New("connection reset")}
	m, _, _ := newManager(t, api)
	m.mu.Lock()
	m.refreshToken = "ref"
	m.mu.Unlock()

	err := m.Refresh(context.Background())
	var rerr *RefreshError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ReasonRefreshFailed, rerr.Reason)
	require.False(t, rerr.Terminal())
	require.Equal(t, "ref", m.RefreshToken())
}

func TestRefresh_MaxAttemptsClearsAndShortCircuits(t *testing.T) {
	api := &fakeAuthAPI{RefreshErr: errors.New("backend down")}
	m, creds, _ := newManager(t, api)
	m.mu.Lock()
	m.refreshToken = "ref"
	m.mu.Unlock()

	// first failure: transient, state preserved
	err := m.Refresh(context.Background())
	var rerr *RefreshError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ReasonRefreshFailed, rerr.Reason)

	// second failure reaches the bound: terminal, record cleared
	err = m.Refresh(context.Background())
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ReasonMaxAttempts, rerr.Reason)
	require.True(t, rerr.Terminal())
	require.Empty(t, m.RefreshToken())

	rec, err := creds.Load(context.Background())
	require.NoError(t, err)
	require.False(t, rec.HasAccessToken())
	require.Empty(t, rec.RefreshToken)

	// further calls short-circuit without any network call
	calls := api.refreshCalls()
	err = m.Refresh(context.Background())
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ReasonMaxAttempts, rerr.Reason)
	require.Equal(t, calls, api.refreshCalls())
}

func TestRefresh_RejectedTokenIsTerminal(t *testing.T) {
	api := &fakeAuthAPI{RefreshErr: common.ErrUnauthorized}
	m, creds, _ := newManager(t, api)
	m.mu.Lock()
	m.refreshToken = "ref"
	m.mu.Unlock()

	err := m.Refresh(context.Background())
	var rerr *RefreshError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ReasonRefreshExpired, rerr.Reason)
	require.True(t, rerr.Terminal())

	rec, err := creds.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, rec.RefreshToken)
}

func TestRefresh_SuccessResetsFailureCounter(t *testing.T) {
	api := &fakeAuthAPI{RefreshErr: errors.New("flaky")}
	m, _, _ := newManager(t, api)
	m.mu.Lock()
	m.refreshToken = "ref"
	m.mu.Unlock()

	require.Error(t, m.Refresh(context.Background()))

	api.mu.Lock()
	api.RefreshErr = nil
	api.RefreshPair = pair("acc2", "ref2", 900)
	api.mu.Unlock()

	require.NoError(t, m.Refresh(context.Background()))
	m.mu.Lock()
	failures := m.failures
	m.mu.Unlock()
	require.Equal(t, 0, failures)
	require.Equal(t, "ref2", m.RefreshToken())
}

func TestAuthChanged_TracksCredentialMutations(t *testing.T) {
	api := &fakeAuthAPI{LoginPair: pair("acc", "ref", 900)}
	m, _, _ := newManager(t, api)

	ch, cancel := m.AuthChanged()
	defer cancel()

	require.False(t, <-ch)

	_, err := m.Login(context.Background(), "user@example.com", "pw")
	require.NoError(t, err)
	require.True(t, <-ch)

	m.Logout(context.Background())
	require.False(t, <-ch)
}

func TestAuthChanged_LatestValueWins(t *testing.T) {
	api := &fakeAuthAPI{LoginPair: pair("acc", "ref", 900)}
	m, _, _ := newManager(t, api)

	ch, cancel := m.AuthChanged()
	defer cancel()

	// do not read: login then logout; only the latest state is delivered
	_, err := m.Login(context.Background(), "user@example.com", "pw")
	require.NoError(t, err)
	m.Logout(context.Background())

	require.False(t, <-ch)
}

func TestLogout_ResetsFailureCounter(t *testing.T) {
	api := &fakeAuthAPI{RefreshErr: errors.New("down")}
	m, _, _ := newManager(t, api)
	m.mu.Lock()
	m.refreshToken = "ref"
	m.mu.Unlock()

	require.Error(t, m.Refresh(context.Background()))
	m.Logout(context.Background())

	m.mu.Lock()
	failures := m.failures
	m.mu.Unlock()
	require.Equal(t, 0, failures)
}

func TestTokenExpiry_FallsBackToExpClaim(t *testing.T) {
	now := time.Now()
	exp := now.Add(30 * time.Minute).Truncate(time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)

	got, err := tokenExpiry(models.TokenPair{AccessToken: signed}, now)
	require.NoError(t, err)
	require.Equal(t, exp.Unix(), got.Unix())
}

func TestTokenExpiry_MalformedResponses(t *testing.T) {
	now := time.Now()

	_, err := tokenExpiry(models.TokenPair{}, now)
	require.ErrorIs(t, err, common.ErrMalformedResponse)

	_, err = tokenExpiry(models.TokenPair{AccessToken: "not-a-jwt"}, now)
	require.ErrorIs(t, err, common.ErrMalformedResponse)
}

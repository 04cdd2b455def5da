package qbittorrent

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerjest/qbittorrent-go/internal/qbtest"
)

func newFake(t *testing.T, version string) *qbtest.Server {
	t.Helper()
	srv := qbtest.NewServer(version)
	t.Cleanup(srv.Close)
	return srv
}

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig(srv *qbtest.Server) Config {
	return Config{
		BaseURL:         srv.URL,
		Username:        srv.Username,
		Password:        srv.Password,
		Logger:          discardLogger(),
		AddTimeout:      time.Second,
		AddPollInterval: 10 * time.Millisecond,
	}
}

func newTestClient(t *testing.T, srv *qbtest.Server) *Client {
	t.Helper()
	return New(testConfig(srv))
}

func TestConfig_Defaults(t *testing.T) {
	c := New(Config{})
	cfg := c.Config()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultPath, cfg.Path)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultCookieName, cfg.CookieName)
	assert.Equal(t, "http://localhost:9091/api/v2/auth/login", c.url("/auth/login"))
}

func TestClient_URL(t *testing.T) {
	c := New(Config{BaseURL: "http://qbit.lan:8080", Path: "api/v2/"})
	assert.Equal(t, "http://qbit.lan:8080/api/v2/torrents/info", c.url("/torrents/info"))

	c = New(Config{BaseURL: "http://qbit.lan/sub/", Path: "/api/v2"})
	assert.Equal(t, "http://qbit.lan/sub/api/v2/app/version", c.url("app/version"))
}

// A fresh client logs in on its first call and reuses the session after.
func TestClient_AutoLogin(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	srv.AddTorrents(
		qbtest.Torrent{Hash: qbtest.Hash(1), Name: "one", State: "downloading", Category: "linux"},
		qbtest.Torrent{Hash: qbtest.Hash(2), Name: "two", State: "uploading", Progress: 1, Category: "linux"},
		qbtest.Torrent{Hash: qbtest.Hash(3), Name: "three", State: "pausedDL"},
	)
	c := newTestClient(t, srv)
	ctx := context.Background()

	data, err := c.GetAllData(ctx)
	require.NoError(t, err)
	assert.Len(t, data.Torrents, 3)
	assert.Len(t, srv.CallsTo("/auth/login"), 1)
	assert.NotEmpty(t, c.ExportState().SID)
	assert.Equal(t, "v4.6.2", c.ExportState().Version)

	_, err = c.GetAllData(ctx)
	require.NoError(t, err)
	assert.Len(t, srv.CallsTo("/auth/login"), 1)
	assert.Len(t, srv.CallsTo("/app/version"), 1)

	labels := data.Labels
	require.Len(t, labels, 1)
	assert.Equal(t, "linux", labels[0].Name)
	assert.Equal(t, 2, labels[0].Count)
}

func TestClient_LoginSendsForm(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	c := newTestClient(t, srv)

	require.NoError(t, c.Login(context.Background()))
	calls := srv.CallsTo("/auth/login")
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "admin", calls[0].Form.Get("username"))
	assert.Equal(t, "adminadmin", calls[0].Form.Get("password"))
}

func TestClient_LoginErrors(t *testing.T) {
	t.Run("no cookie", func(t *testing.T) {
		srv := newFake(t, "v4.6.2")
		srv.OmitCookie = true
		err := newTestClient(t, srv).Login(context.Background())
		assert.ErrorIs(t, err, ErrCookieNotFound)
		assert.ErrorIs(t, err, ErrAuthFailed)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		srv := newFake(t, "v4.6.2")
		cfg := testConfig(srv)
		cfg.Password = "nope"
		err := New(cfg).Login(context.Background())
		assert.ErrorIs(t, err, ErrCookieNotFound)
	})

	t.Run("unexpected cookie name", func(t *testing.T) {
		srv := newFake(t, "v4.6.2")
		srv.CookieName = "QBT_SID_8080"
		err := newTestClient(t, srv).Login(context.Background())
		assert.ErrorIs(t, err, ErrInvalidCookie)
		assert.ErrorIs(t, err, ErrAuthFailed)
	})

	t.Run("configured cookie name", func(t *testing.T) {
		srv := newFake(t, "v4.6.2")
		srv.CookieName = "QBT_SID_8080"
		cfg := testConfig(srv)
		cfg.CookieName = "QBT_SID_8080"
		c := New(cfg)
		require.NoError(t, c.Login(context.Background()))
		_, err := c.AppVersion(context.Background())
		assert.NoError(t, err)
	})

	t.Run("transport error", func(t *testing.T) {
		srv := qbtest.NewServer("v4.6.2")
		cfg := testConfig(srv)
		srv.Close()
		err := New(cfg).Login(context.Background())
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrAuthFailed))
	})
}

func TestClient_CookieExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("max age", func(t *testing.T) {
		srv := newFake(t, "v4.6.2")
		srv.MaxAge = 120
		c := newTestClient(t, srv)
		c.now = func() time.Time { return now }
		require.NoError(t, c.Login(context.Background()))
		assert.Equal(t, now.Add(2*time.Minute), c.ExportState().Expires)
	})

	t.Run("session cookie", func(t *testing.T) {
		srv := newFake(t, "v4.6.2")
		c := newTestClient(t, srv)
		c.now = func() time.Time { return now }
		require.NoError(t, c.Login(context.Background()))
		assert.Equal(t, now.Add(time.Hour), c.ExportState().Expires)
	})

	t.Run("explicit expires", func(t *testing.T) {
		expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, expires, cookieExpiry(&http.Cookie{Expires: expires}, now))
	})

	t.Run("expires in the past", func(t *testing.T) {
		expired := now.Add(-time.Minute)
		assert.Equal(t, now.Add(time.Hour), cookieExpiry(&http.Cookie{Expires: expired}, now))
	})
}

func TestClient_RelogsAfterExpiry(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	c := newTestClient(t, srv)
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.AppVersion(ctx)
	require.NoError(t, err)
	require.Len(t, srv.CallsTo("/auth/login"), 1)

	now = now.Add(2 * time.Hour)
	_, err = c.AppVersion(ctx)
	require.NoError(t, err)
	assert.Len(t, srv.CallsTo("/auth/login"), 2)
}

func TestClient_SnapshotRoundTrip(t *testing.T) {
	srv := newFake(t, "v5.0.1")
	ctx := context.Background()

	first := newTestClient(t, srv)
	require.NoError(t, first.Login(ctx))
	state := first.ExportState()
	require.True(t, state.Valid(time.Now()))

	second := NewFromState(testConfig(srv), state)
	assert.Equal(t, DialectV5, second.Dialect())
	_, err := second.ListTorrents(ctx, ListOptions{})
	require.NoError(t, err)

	assert.Len(t, srv.CallsTo("/auth/login"), 1)
	assert.Equal(t, state, second.ExportState())
}

func TestClient_StaleSnapshotLogsIn(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	state := SessionState{SID: "old", Expires: time.Now().Add(-time.Minute), Version: "v4.6.2"}

	c := NewFromState(testConfig(srv), state)
	_, err := c.AppVersion(context.Background())
	require.NoError(t, err)
	assert.Len(t, srv.CallsTo("/auth/login"), 1)
	assert.NotEqual(t, "old", c.ExportState().SID)
	// The cached version is kept, so no probe is needed.
	assert.Len(t, srv.CallsTo("/app/version"), 1)
}

func TestSessionState_Valid(t *testing.T) {
	now := time.Now()
	assert.False(t, SessionState{}.Valid(now))
	assert.False(t, SessionState{SID: "x"}.Valid(now))
	assert.False(t, SessionState{SID: "x", Expires: now.Add(-time.Second)}.Valid(now))
	assert.False(t, SessionState{Expires: now.Add(time.Hour)}.Valid(now))
	assert.True(t, SessionState{SID: "x", Expires: now.Add(time.Hour)}.Valid(now))
}

func TestClient_Logout(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	c := newTestClient(t, srv)
	require.NoError(t, c.Login(context.Background()))
	calls := len(srv.Calls())

	c.Logout()
	c.Logout()

	state := c.ExportState()
	assert.Empty(t, state.SID)
	assert.True(t, state.Expires.IsZero())
	assert.Equal(t, "v4.6.2", state.Version)
	assert.Len(t, srv.Calls(), calls)
}

func TestClient_ForbiddenDropsSession(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	c := newTestClient(t, srv)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx))

	srv.ExpireSessions()
	_, err := c.AppVersion(ctx)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, "/app/version", statusErr.Path)
	assert.Empty(t, c.ExportState().SID)

	_, err = c.AppVersion(ctx)
	require.NoError(t, err)
	assert.Len(t, srv.CallsTo("/auth/login"), 2)
}

func TestClient_ConcurrentCalls(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	c := newTestClient(t, srv)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ListTorrents(context.Background(), ListOptions{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.NotEmpty(t, c.ExportState().SID)
}

func TestClient_SharedLoginOutlivesCancelledCaller(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	srv.LoginDelay = 200 * time.Millisecond
	c := newTestClient(t, srv)

	shortCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	shortErr := make(chan error, 1)
	go func() {
		_, err := c.ListTorrents(shortCtx, ListOptions{})
		shortErr <- err
	}()
	// Let the short caller start the shared login.
	time.Sleep(10 * time.Millisecond)

	_, err := c.ListTorrents(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.ErrorIs(t, <-shortErr, context.DeadlineExceeded)
	assert.Len(t, srv.CallsTo("/auth/login"), 1)
	assert.NotEmpty(t, c.ExportState().SID)
}

func TestClient_ForbiddenVersionProbeKeepsSession(t *testing.T) {
	var logins int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/api/v2") {
		case "/auth/login":
			mu.Lock()
			logins++
			mu.Unlock()
			http.SetCookie(w, &http.Cookie{Name: "SID", Value: "issued"})
			io.WriteString(w, "Ok.")
		case "/app/version":
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			io.WriteString(w, `{"qt":"6.4.2"}`)
		}
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL, Logger: discardLogger()})
	ctx := context.Background()
	require.NoError(t, c.Login(ctx))
	assert.Equal(t, "issued", c.ExportState().SID)
	assert.Equal(t, DialectLegacy, c.Dialect())

	_, err := c.BuildInfo(ctx)
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, logins)
}

type recordingObserver struct {
	mu       sync.Mutex
	requests []string
	logins   []error
}

func (o *recordingObserver) ObserveRequest(endpoint string, _ int, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, endpoint)
}

func (o *recordingObserver) ObserveLogin(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logins = append(o.logins, err)
}

func TestClient_Observer(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	obs := &recordingObserver{}
	cfg := testConfig(srv)
	cfg.Observer = obs

	_, err := New(cfg).BuildInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"/auth/login", "/app/version", "/app/buildInfo"}, obs.requests)
	assert.Equal(t, []error{nil}, obs.logins)
}

// Package qbittorrent is a client for the qBittorrent WebUI API (v2).
//
// A Client logs in on demand: the first call made without a valid session
// performs the login, and later calls reuse the session cookie until it
// expires or Logout is called.
package qbittorrent

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/pokerjest/qbittorrent-go/pkg/torrentclient"
)

const (
	DefaultBaseURL    = "http://localhost:9091/"
	DefaultPath       = "/api/v2"
	DefaultTimeout    = 5 * time.Second
	DefaultCookieName = "SID"

	defaultSessionTTL      = time.Hour
	defaultAddTimeout      = 10 * time.Second
	defaultAddPollInterval = 500 * time.Millisecond
)

// Observer receives per-request telemetry. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveRequest(endpoint string, status int, elapsed time.Duration, err error)
	ObserveLogin(err error)
}

// Config configures a Client. Zero fields take the package defaults.
type Config struct {
	BaseURL  string
	Path     string
	Username string
	Password string
	Timeout  time.Duration

	// ProxyURL routes requests through an HTTP proxy.
	ProxyURL string
	// Transport replaces the underlying round tripper.
	Transport http.RoundTripper

	// CookieName is the session cookie set by /auth/login.
	CookieName string

	// AddTimeout bounds how long NormalizedAddTorrent waits for the added
	// torrent to show up in the listing.
	AddTimeout      time.Duration
	AddPollInterval time.Duration

	Logger   logrus.FieldLogger
	Observer Observer
}

func (cfg Config) withDefaults() Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.AddTimeout <= 0 {
		cfg.AddTimeout = defaultAddTimeout
	}
	if cfg.AddPollInterval <= 0 {
		cfg.AddPollInterval = defaultAddPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return cfg
}

// Client talks to one qBittorrent WebUI.
type Client struct {
	cfg  Config
	http *resty.Client
	log  logrus.FieldLogger
	now  func() time.Time

	mu      sync.RWMutex
	session SessionState
	dialect Dialect

	logins singleflight.Group
}

var _ torrentclient.Client = (*Client)(nil)

// New builds a Client without a session.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()
	log := cfg.Logger.WithField("component", "qbittorrent")

	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetRedirectPolicy(resty.NoRedirectPolicy()).
		SetCookieJar(nil).
		SetHeader("Referer", strings.TrimRight(cfg.BaseURL, "/")).
		SetLogger(log)
	if cfg.Transport != nil {
		rc.SetTransport(cfg.Transport)
	}
	if cfg.ProxyURL != "" {
		rc.SetProxy(cfg.ProxyURL)
	}

	rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		log.WithFields(logrus.Fields{
			"method": req.Method,
			"url":    req.URL,
		}).Debug("outgoing request")
		return nil
	})

	return &Client{
		cfg:  cfg,
		http: rc,
		log:  log,
		now:  time.Now,
	}
}

// NewFromState builds a Client that reuses a session exported by
// ExportState. No login happens until the session is stale.
func NewFromState(cfg Config, state SessionState) *Client {
	c := New(cfg)
	c.session = state
	c.dialect = DialectForVersion(state.Version)
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) url(endpoint string) string {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	prefix := strings.Trim(c.cfg.Path, "/")
	if prefix != "" {
		base += "/" + prefix
	}
	return base + "/" + strings.TrimLeft(endpoint, "/")
}

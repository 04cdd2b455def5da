package qbittorrent

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// SessionState is the exportable part of a Client: the session cookie, its
// expiry and the detected application version.
type SessionState struct {
	SID     string    `json:"sid"`
	Expires time.Time `json:"expires"`
	Version string    `json:"version,omitempty"`
}

// Valid reports whether the session can be presented at now.
func (s SessionState) Valid(now time.Time) bool {
	return s.SID != "" && !s.Expires.IsZero() && !s.Expires.Before(now)
}

// ExportState returns a snapshot of the current session.
func (c *Client) ExportState() SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Dialect returns the endpoint dialect detected at login.
func (c *Client) Dialect() Dialect {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dialect
}

// Login authenticates with the configured credentials and stores the
// session cookie. Concurrent callers share one request, which is not
// cancelled with any one caller's context and is bounded by Config.Timeout.
// Each caller still returns early when its own ctx is done.
//
// https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#login
func (c *Client) Login(ctx context.Context) error {
	ch := c.logins.DoChan("login", func() (any, error) {
		return nil, c.login(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) login(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		Post(c.url("/auth/login"))
	c.observeRequest("/auth/login", resp, time.Since(start), err)
	if err != nil {
		c.observeLogin(err)
		return err
	}
	if resp.IsError() {
		err := &StatusError{
			Method:     http.MethodPost,
			Path:       "/auth/login",
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
		c.observeLogin(err)
		return err
	}

	cookie, err := c.sessionCookie(resp.Cookies())
	if err != nil {
		c.observeLogin(err)
		return err
	}

	now := c.now()
	c.mu.Lock()
	c.session.SID = cookie.Value
	c.session.Expires = cookieExpiry(cookie, now)
	version := c.session.Version
	c.mu.Unlock()
	c.observeLogin(nil)

	c.log.WithField("base_url", c.cfg.BaseURL).Debug("logged in")

	if version == "" {
		c.probeVersion(ctx)
	}
	return nil
}

func (c *Client) sessionCookie(cookies []*http.Cookie) (*http.Cookie, error) {
	if len(cookies) == 0 {
		return nil, ErrCookieNotFound
	}
	for _, cookie := range cookies {
		if cookie.Name == c.cfg.CookieName {
			return cookie, nil
		}
	}
	return nil, ErrInvalidCookie
}

func cookieExpiry(cookie *http.Cookie, now time.Time) time.Time {
	if cookie.MaxAge > 0 {
		return now.Add(time.Duration(cookie.MaxAge) * time.Second)
	}
	if !cookie.Expires.IsZero() && cookie.Expires.After(now) {
		return cookie.Expires
	}
	return now.Add(defaultSessionTTL)
}

// probeVersion fetches the application version once per session state and
// caches the resulting dialect. Failures leave the legacy dialect in place.
func (c *Client) probeVersion(ctx context.Context) {
	resp, err := c.send(ctx, call{method: http.MethodGet, path: "/app/version", text: true, keepSession: true})
	if err != nil {
		c.log.WithError(err).Warn("could not detect qBittorrent version")
		return
	}
	version := resp.String()
	dialect := DialectForVersion(version)

	c.mu.Lock()
	c.session.Version = version
	c.dialect = dialect
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"version": version,
		"dialect": dialect.String(),
	}).Debug("detected qBittorrent version")
}

// ensureAuthenticated logs in when there is no session or it expired.
func (c *Client) ensureAuthenticated(ctx context.Context) error {
	c.mu.RLock()
	valid := c.session.Valid(c.now())
	c.mu.RUnlock()
	if valid {
		return nil
	}
	return c.Login(ctx)
}

// Logout drops the local session. The server is not contacted.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.SID = ""
	c.session.Expires = time.Time{}
}

package qbittorrent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// call describes one WebUI request. query always goes into the URL; the
// body is either form (urlencoded) or multipart.
type call struct {
	method    string
	path      string
	query     url.Values
	form      url.Values
	multipart []*resty.MultipartField
	// text skips JSON decoding. Some endpoints answer plain text.
	text bool
	// keepSession leaves the session in place on a 403.
	keepSession bool
}

// do sends c after making sure there is a valid session.
func (c *Client) do(ctx context.Context, cl call) (*resty.Response, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}
	return c.send(ctx, cl)
}

func (c *Client) send(ctx context.Context, cl call) (*resty.Response, error) {
	c.mu.RLock()
	sid := c.session.SID
	c.mu.RUnlock()

	req := c.http.R().
		SetContext(ctx).
		SetCookie(&http.Cookie{Name: c.cfg.CookieName, Value: sid})
	if len(cl.query) > 0 {
		req.SetQueryParamsFromValues(cl.query)
	}
	switch {
	case cl.multipart != nil:
		req.SetMultipartFields(cl.multipart...)
	case cl.form != nil:
		req.SetFormDataFromValues(cl.form)
	}
	if cl.text {
		req.SetHeader("Accept", "text/plain")
	} else {
		req.SetHeader("Accept", "application/json")
	}

	start := time.Now()
	resp, err := req.Execute(cl.method, c.url(cl.path))
	c.observeRequest(cl.path, resp, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		if resp.StatusCode() == http.StatusForbidden && !cl.keepSession {
			// The server no longer accepts the cookie; the next call logs in.
			c.Logout()
		}
		return nil, &StatusError{
			Method:     cl.method,
			Path:       cl.path,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	resp, err := c.do(ctx, call{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	return decode(resp, path, dest)
}

func (c *Client) getText(ctx context.Context, path string) (string, error) {
	resp, err := c.do(ctx, call{method: http.MethodGet, path: path, text: true})
	if err != nil {
		return "", err
	}
	return resp.String(), nil
}

// post sends a urlencoded form and returns the plain-text body.
func (c *Client) post(ctx context.Context, path string, form url.Values) (string, error) {
	if form == nil {
		form = url.Values{}
	}
	resp, err := c.do(ctx, call{method: http.MethodPost, path: path, form: form, text: true})
	if err != nil {
		return "", err
	}
	return resp.String(), nil
}

func decode(resp *resty.Response, path string, dest any) error {
	if err := json.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("qbittorrent: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) observeRequest(endpoint string, resp *resty.Response, elapsed time.Duration, err error) {
	if c.cfg.Observer == nil {
		return
	}
	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}
	c.cfg.Observer.ObserveRequest(endpoint, status, elapsed, err)
}

func (c *Client) observeLogin(err error) {
	if c.cfg.Observer != nil {
		c.cfg.Observer.ObserveLogin(err)
	}
}

// postJSON sends a urlencoded form and decodes a JSON answer.
func (c *Client) postJSON(ctx context.Context, path string, form url.Values, dest any) error {
	resp, err := c.do(ctx, call{method: http.MethodPost, path: path, form: form})
	if err != nil {
		return err
	}
	return decode(resp, path, dest)
}

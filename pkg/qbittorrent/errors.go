package qbittorrent

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailed is returned when the server answered the login request
	// without a usable session cookie.
	ErrAuthFailed     = errors.New("qbittorrent: auth failed")
	ErrCookieNotFound = fmt.Errorf("%w: cookie not found", ErrAuthFailed)
	ErrInvalidCookie  = fmt.Errorf("%w: invalid cookie", ErrAuthFailed)

	ErrTorrentNotFound   = errors.New("qbittorrent: torrent not found")
	ErrAddTorrentFailed  = errors.New("qbittorrent: failed to add torrent")
	ErrMagnetMissingHash = errors.New("qbittorrent: magnet did not contain hash")
	ErrInvalidTorrent    = errors.New("qbittorrent: invalid torrent file")
)

// failsBody is the plain-text body several endpoints return on a logical
// failure, with status 200.
const failsBody = "Fails."

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("qbittorrent: %s %s returned status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("qbittorrent: %s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

package qbittorrent

import (
	"strings"

	"github.com/blang/semver/v4"
)

// Dialect selects between the endpoint spellings used before and after
// qBittorrent 5.0, which renamed pause/resume to stop/start.
type Dialect int

const (
	// DialectLegacy covers servers before 5.0 and servers whose version is
	// not known yet.
	DialectLegacy Dialect = iota
	DialectV5
)

var v5 = semver.MustParse("5.0.0")

func (d Dialect) String() string {
	if d == DialectV5 {
		return "v5"
	}
	return "legacy"
}

// DialectForVersion classifies an /app/version string such as "v4.6.2".
// Unparseable versions are treated as legacy.
func DialectForVersion(version string) Dialect {
	v, err := semver.ParseTolerant(strings.TrimSpace(version))
	if err != nil {
		return DialectLegacy
	}
	if v.GTE(v5) {
		return DialectV5
	}
	return DialectLegacy
}

func (d Dialect) stopPath() string {
	if d == DialectV5 {
		return "/torrents/stop"
	}
	return "/torrents/pause"
}

func (d Dialect) startPath() string {
	if d == DialectV5 {
		return "/torrents/start"
	}
	return "/torrents/resume"
}

// pausedField is the /torrents/add form field that adds a torrent without
// starting it.
func (d Dialect) pausedField() string {
	if d == DialectV5 {
		return "stopped"
	}
	return "paused"
}

func (d Dialect) filter(f TorrentFilter) TorrentFilter {
	switch {
	case d == DialectV5 && f == TorrentFilterPaused:
		return TorrentFilterStopped
	case d == DialectV5 && f == TorrentFilterResumed:
		return TorrentFilterRunning
	case d == DialectLegacy && f == TorrentFilterStopped:
		return TorrentFilterPaused
	case d == DialectLegacy && f == TorrentFilterRunning:
		return TorrentFilterResumed
	}
	return f
}

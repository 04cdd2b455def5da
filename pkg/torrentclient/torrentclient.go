// Package torrentclient holds the backend-neutral torrent shape shared by
// every download client in this module.
package torrentclient

import (
	"context"
	"sort"
	"time"
)

// State is the normalized torrent state. Backends map their own status
// vocabulary onto these values.
type State string

const (
	StateDownloading State = "downloading"
	StateSeeding     State = "seeding"
	StatePaused      State = "paused"
	StateQueued      State = "queued"
	StateChecking    State = "checking"
	StateWarning     State = "warning"
	StateError       State = "error"
	StateUnknown     State = "unknown"
)

// NormalizedTorrent is a projection of one backend torrent record.
type NormalizedTorrent struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	State         State     `json:"state"`
	StateMessage  string    `json:"stateMessage"`
	ETA           int64     `json:"eta"`
	DateAdded     time.Time `json:"dateAdded"`
	DateCompleted time.Time `json:"dateCompleted"`
	IsCompleted   bool      `json:"isCompleted"`
	Progress      float64   `json:"progress"`
	Label         string    `json:"label"`
	Tags          []string  `json:"tags"`
	SavePath      string    `json:"savePath"`

	UploadSpeed   int64 `json:"uploadSpeed"`
	DownloadSpeed int64 `json:"downloadSpeed"`
	QueuePosition int64 `json:"queuePosition"`

	ConnectedPeers int64 `json:"connectedPeers"`
	ConnectedSeeds int64 `json:"connectedSeeds"`
	TotalPeers     int64 `json:"totalPeers"`
	TotalSeeds     int64 `json:"totalSeeds"`

	TotalSelected   int64   `json:"totalSelected"`
	TotalSize       int64   `json:"totalSize"`
	TotalUploaded   int64   `json:"totalUploaded"`
	TotalDownloaded int64   `json:"totalDownloaded"`
	Ratio           float64 `json:"ratio"`

	// Raw points at the backend record this value was built from.
	Raw any `json:"raw,omitempty"`
}

// Label aggregates torrents sharing a label (category).
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AllClientData is the result of a full listing.
type AllClientData struct {
	Torrents []NormalizedTorrent `json:"torrents"`
	Labels   []Label             `json:"labels"`
}

// AddTorrentOptions are the backend-neutral options for NormalizedAddTorrent.
type AddTorrentOptions struct {
	StartPaused bool   `json:"startPaused"`
	Label       string `json:"label"`
}

// Client is implemented by every backend client.
type Client interface {
	Login(ctx context.Context) error
	Logout()
	GetTorrent(ctx context.Context, id string) (*NormalizedTorrent, error)
	GetAllData(ctx context.Context) (*AllClientData, error)
	// NormalizedAddTorrent adds torrent, which is either the contents of a
	// .torrent file or a magnet URI, and returns its normalized record.
	NormalizedAddTorrent(ctx context.Context, torrent []byte, opts AddTorrentOptions) (*NormalizedTorrent, error)
	PauseTorrent(ctx context.Context, ids ...string) error
	ResumeTorrent(ctx context.Context, ids ...string) error
	RemoveTorrent(ctx context.Context, deleteFiles bool, ids ...string) error
}

// TallyLabels counts torrents per non-empty label. The result is sorted by
// label name.
func TallyLabels(torrents []NormalizedTorrent) []Label {
	counts := make(map[string]int)
	for _, t := range torrents {
		if t.Label == "" {
			continue
		}
		counts[t.Label]++
	}

	labels := make([]Label, 0, len(counts))
	for name, count := range counts {
		labels = append(labels, Label{ID: name, Name: name, Count: count})
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
	return labels
}

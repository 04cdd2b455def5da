package qbittorrent

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pokerjest/qbittorrent-go/pkg/torrentclient"
)

func (o ListOptions) query(d Dialect) url.Values {
	q := url.Values{}
	if len(o.Hashes) > 0 {
		q.Set("hashes", NormalizeHashes(o.Hashes...))
	}
	if o.Filter != "" {
		q.Set("filter", string(d.filter(o.Filter)))
	}
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	if o.Tag != "" {
		q.Set("tag", o.Tag)
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	if o.Reverse {
		q.Set("reverse", "true")
	}
	if o.Offset != 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	return q
}

// ListTorrents https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#get-torrent-list
func (c *Client) ListTorrents(ctx context.Context, opts ListOptions) ([]Torrent, error) {
	// The dialect is only known after login, so authenticate before the
	// filter is translated.
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}
	var torrents []Torrent
	if err := c.getJSON(ctx, "/torrents/info", opts.query(c.Dialect()), &torrents); err != nil {
		return nil, err
	}
	return torrents, nil
}

// GetTorrent returns the normalized record for hash or ErrTorrentNotFound.
func (c *Client) GetTorrent(ctx context.Context, hash string) (*torrentclient.NormalizedTorrent, error) {
	torrents, err := c.ListTorrents(ctx, ListOptions{Hashes: []string{hash}})
	if err != nil {
		return nil, err
	}
	if len(torrents) == 0 {
		return nil, ErrTorrentNotFound
	}
	n := Normalize(torrents[0])
	return &n, nil
}

// GetAllData lists every torrent in normalized form with a per-label tally.
func (c *Client) GetAllData(ctx context.Context) (*torrentclient.AllClientData, error) {
	torrents, err := c.ListTorrents(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}
	data := &torrentclient.AllClientData{
		Torrents: make([]torrentclient.NormalizedTorrent, 0, len(torrents)),
	}
	for _, t := range torrents {
		data.Torrents = append(data.Torrents, Normalize(t))
	}
	data.Labels = torrentclient.TallyLabels(data.Torrents)
	return data, nil
}

func hashQuery(hash string) url.Values {
	return url.Values{"hash": {hash}}
}

// TorrentProperties https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#get-torrent-generic-properties
func (c *Client) TorrentProperties(ctx context.Context, hash string) (*TorrentProperties, error) {
	var props TorrentProperties
	if err := c.getJSON(ctx, "/torrents/properties", hashQuery(hash), &props); err != nil {
		return nil, err
	}
	return &props, nil
}

// TorrentTrackers https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#get-torrent-trackers
func (c *Client) TorrentTrackers(ctx context.Context, hash string) ([]TorrentTracker, error) {
	var trackers []TorrentTracker
	if err := c.getJSON(ctx, "/torrents/trackers", hashQuery(hash), &trackers); err != nil {
		return nil, err
	}
	return trackers, nil
}

// TorrentWebSeeds https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#get-torrent-web-seeds
func (c *Client) TorrentWebSeeds(ctx context.Context, hash string) ([]WebSeed, error) {
	var seeds []WebSeed
	if err := c.getJSON(ctx, "/torrents/webseeds", hashQuery(hash), &seeds); err != nil {
		return nil, err
	}
	return seeds, nil
}

// TorrentFiles https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#get-torrent-contents
func (c *Client) TorrentFiles(ctx context.Context, hash string) ([]TorrentFile, error) {
	var files []TorrentFile
	if err := c.getJSON(ctx, "/torrents/files", hashQuery(hash), &files); err != nil {
		return nil, err
	}
	return files, nil
}

// TorrentPieceStates https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#get-torrent-pieces-states
func (c *Client) TorrentPieceStates(ctx context.Context, hash string) ([]PieceState, error) {
	var states []PieceState
	if err := c.getJSON(ctx, "/torrents/pieceStates", hashQuery(hash), &states); err != nil {
		return nil, err
	}
	return states, nil
}

// TorrentPieceHashes returns the hash of every piece, in order.
func (c *Client) TorrentPieceHashes(ctx context.Context, hash string) ([]string, error) {
	var hashes []string
	if err := c.getJSON(ctx, "/torrents/pieceHashes", hashQuery(hash), &hashes); err != nil {
		return nil, err
	}
	return hashes, nil
}

// TorrentPeers returns the peer list of hash. rid is the response id of a
// previous call, or 0 for a full update.
func (c *Client) TorrentPeers(ctx context.Context, hash string, rid int64) (*TorrentPeers, error) {
	q := hashQuery(hash)
	q.Set("rid", strconv.FormatInt(rid, 10))
	var peers TorrentPeers
	if err := c.getJSON(ctx, "/sync/torrentPeers", q, &peers); err != nil {
		return nil, err
	}
	return &peers, nil
}

func (c *Client) bulk(ctx context.Context, path string, hashes []string, extra url.Values) error {
	form := url.Values{}
	for k, v := range extra {
		form[k] = v
	}
	form.Set("hashes", NormalizeHashes(hashes...))
	_, err := c.post(ctx, path, form)
	return err
}

// StopTorrent stops hashes, or every torrent when passed All. Older servers
// call this pause.
func (c *Client) StopTorrent(ctx context.Context, hashes ...string) error {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return err
	}
	return c.bulk(ctx, c.Dialect().stopPath(), hashes, nil)
}

// StartTorrent starts hashes, or every torrent when passed All. Older
// servers call this resume.
func (c *Client) StartTorrent(ctx context.Context, hashes ...string) error {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return err
	}
	return c.bulk(ctx, c.Dialect().startPath(), hashes, nil)
}

// PauseTorrent is StopTorrent.
func (c *Client) PauseTorrent(ctx context.Context, hashes ...string) error {
	return c.StopTorrent(ctx, hashes...)
}

// ResumeTorrent is StartTorrent.
func (c *Client) ResumeTorrent(ctx context.Context, hashes ...string) error {
	return c.StartTorrent(ctx, hashes...)
}

// RemoveTorrent https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#delete-torrents
func (c *Client) RemoveTorrent(ctx context.Context, deleteFiles bool, hashes ...string) error {
	return c.bulk(ctx, "/torrents/delete", hashes, url.Values{
		"deleteFiles": {strconv.FormatBool(deleteFiles)},
	})
}

// RecheckTorrent https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#recheck-torrents
func (c *Client) RecheckTorrent(ctx context.Context, hashes ...string) error {
	return c.bulk(ctx, "/torrents/recheck", hashes, nil)
}

// ReannounceTorrent https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#reannounce-torrents
func (c *Client) ReannounceTorrent(ctx context.Context, hashes ...string) error {
	return c.bulk(ctx, "/torrents/reannounce", hashes, nil)
}

// QueueUp https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#increase-torrent-priority
func (c *Client) QueueUp(ctx context.Context, hashes ...string) error {
	return c.bulk(ctx, "/torrents/increasePrio", hashes, nil)
}

// QueueDown https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#decrease-torrent-priority
func (c *Client) QueueDown(ctx context.Context, hashes ...string) error {
	return c.bulk(ctx, "/torrents/decreasePrio", hashes, nil)
}

// TopPriority https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#maximal-torrent-priority
func (c *Client) TopPriority(ctx context.Context, hashes ...string) error {
	return c.bulk(ctx, "/torrents/topPrio", hashes, nil)
}

// BottomPriority https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#minimal-torrent-priority
func (c *Client) BottomPriority(ctx context.Context, hashes ...string) error {
	return c.bulk(ctx, "/torrents/bottomPrio", hashes, nil)
}

package qbittorrent

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCannedServer answers login and version, and serves body for the
// endpoints in routes (keyed without the /api/v2 prefix).
func newCannedServer(t *testing.T, routes map[string]string) (*httptest.Server, *seenURLs) {
	t.Helper()
	seen := &seenURLs{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := strings.TrimPrefix(r.URL.Path, "/api/v2")
		seen.add(r.URL)
		switch endpoint {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "SID", Value: "canned"})
			io.WriteString(w, "Ok.")
			return
		case "/app/version":
			io.WriteString(w, "v4.6.2")
			return
		}
		if c, err := r.Cookie("SID"); err != nil || c.Value != "canned" {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		body, ok := routes[endpoint]
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

type seenURLs struct {
	mu   sync.Mutex
	urls []*url.URL
}

func (s *seenURLs) add(u *url.URL) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, u)
}

func (s *seenURLs) all() []*url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*url.URL(nil), s.urls...)
}

func cannedClient(srv *httptest.Server) *Client {
	return New(Config{BaseURL: srv.URL, Username: "u", Password: "p", Logger: discardLogger()})
}

func TestClient_DetailEndpoints(t *testing.T) {
	srv, seen := newCannedServer(t, map[string]string{
		"/torrents/properties":  `{"save_path":"/dl/","piece_size":16384,"comment":"hi","share_ratio":1.5,"pieces_num":10,"pieces_have":4}`,
		"/torrents/trackers":    `[{"url":"udp://tracker.example:80","status":2,"num_peers":3,"num_seeds":4,"num_leeches":5,"num_downloaded":6,"msg":"ok"}]`,
		"/torrents/webseeds":    `[{"url":"http://mirror.example/file"}]`,
		"/torrents/files":       `[{"index":0,"name":"a.bin","size":100,"progress":0.5,"priority":6,"piece_range":[0,9],"availability":1}]`,
		"/torrents/pieceStates": `[2,2,1,0]`,
		"/torrents/pieceHashes": `["aa","bb"]`,
		"/sync/torrentPeers":    `{"full_update":true,"rid":4,"show_flags":true,"peers":{"1.2.3.4:5000":{"client":"qBittorrent/4.6.2","ip":"1.2.3.4","port":5000,"progress":0.25}}}`,
	})
	c := cannedClient(srv)
	ctx := context.Background()
	hash := "abc"

	props, err := c.TorrentProperties(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, "/dl/", props.SavePath)
	assert.Equal(t, int64(16384), props.PieceSize)
	assert.InDelta(t, 1.5, props.ShareRatio, 1e-9)

	trackers, err := c.TorrentTrackers(ctx, hash)
	require.NoError(t, err)
	require.Len(t, trackers, 1)
	assert.Equal(t, TrackerStatusWorking, trackers[0].Status)
	assert.Equal(t, "ok", trackers[0].Message)
	assert.Equal(t, 5, trackers[0].NumLeeches)

	seeds, err := c.TorrentWebSeeds(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, []WebSeed{{URL: "http://mirror.example/file"}}, seeds)

	files, err := c.TorrentFiles(ctx, hash)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, FilePriorityHigh, files[0].Priority)
	assert.Equal(t, []int{0, 9}, files[0].PieceRange)

	states, err := c.TorrentPieceStates(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, []PieceState{PieceStateDownloaded, PieceStateDownloaded, PieceStateRequested, PieceStateNotDownloaded}, states)

	hashes, err := c.TorrentPieceHashes(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "bb"}, hashes)

	peers, err := c.TorrentPeers(ctx, hash, 3)
	require.NoError(t, err)
	assert.True(t, peers.FullUpdate)
	assert.Equal(t, int64(4), peers.Rid)
	require.Contains(t, peers.Peers, "1.2.3.4:5000")
	assert.Equal(t, 5000, peers.Peers["1.2.3.4:5000"].Port)

	urls := seen.all()
	require.Len(t, urls, 9)
	for _, u := range urls[2:] {
		assert.Equal(t, hash, u.Query().Get("hash"), u.Path)
	}
	assert.Equal(t, "3", urls[len(urls)-1].Query().Get("rid"))
}

func TestClient_DecodeError(t *testing.T) {
	srv, _ := newCannedServer(t, map[string]string{"/torrents/info": `not json`})
	_, err := cannedClient(srv).ListTorrents(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode /torrents/info")
}

func TestClient_StatusError(t *testing.T) {
	srv, _ := newCannedServer(t, nil)
	_, err := cannedClient(srv).TorrentProperties(context.Background(), "missing")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "GET", statusErr.Method)
	assert.Contains(t, statusErr.Error(), "/torrents/properties")
}

func TestClient_BuildInfoAndVersions(t *testing.T) {
	srv, _ := newCannedServer(t, map[string]string{
		"/app/buildInfo":     `{"qt":"6.4.2","libtorrent":"2.0.9.0","boost":"1.82.0","openssl":"3.1.2","zlib":"1.2.13","bitness":64}`,
		"/app/webapiVersion": "2.9.3",
	})
	c := cannedClient(srv)
	ctx := context.Background()

	info, err := c.BuildInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 64, info.Bitness)
	assert.Equal(t, "2.0.9.0", info.Libtorrent)

	api, err := c.APIVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2.9.3", api)

	app, err := c.AppVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v4.6.2", app)
}

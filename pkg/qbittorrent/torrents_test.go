package qbittorrent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerjest/qbittorrent-go/internal/qbtest"
	"github.com/pokerjest/qbittorrent-go/pkg/torrentclient"
)

func TestListOptions_Query(t *testing.T) {
	q := ListOptions{
		Hashes:   []string{"a", "b"},
		Filter:   TorrentFilterPaused,
		Category: "linux",
		Tag:      "iso",
		Sort:     "added_on",
		Reverse:  true,
		Offset:   -5,
		Limit:    10,
	}.query(DialectV5)

	assert.Equal(t, "a|b", q.Get("hashes"))
	assert.Equal(t, "stopped", q.Get("filter"))
	assert.Equal(t, "linux", q.Get("category"))
	assert.Equal(t, "iso", q.Get("tag"))
	assert.Equal(t, "added_on", q.Get("sort"))
	assert.Equal(t, "true", q.Get("reverse"))
	assert.Equal(t, "-5", q.Get("offset"))
	assert.Equal(t, "10", q.Get("limit"))

	assert.Empty(t, ListOptions{}.query(DialectLegacy))
}

func TestClient_ListTorrentsFilterDialect(t *testing.T) {
	for _, tt := range []struct {
		version string
		want    string
	}{
		{"v4.6.2", "paused"},
		{"v5.0.1", "stopped"},
	} {
		t.Run(tt.version, func(t *testing.T) {
			srv := newFake(t, tt.version)
			c := newTestClient(t, srv)

			_, err := c.ListTorrents(context.Background(), ListOptions{Filter: TorrentFilterPaused})
			require.NoError(t, err)

			calls := srv.CallsTo("/torrents/info")
			require.Len(t, calls, 1)
			assert.Equal(t, tt.want, calls[0].Query.Get("filter"))
		})
	}
}

func TestClient_GetTorrent(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	srv.AddTorrents(qbtest.Torrent{Hash: qbtest.Hash(7), Name: "seven", State: "stalledUP", Progress: 1, ETA: 8640000})
	c := newTestClient(t, srv)
	ctx := context.Background()

	got, err := c.GetTorrent(ctx, qbtest.Hash(7))
	require.NoError(t, err)
	assert.Equal(t, "seven", got.Name)
	assert.Equal(t, torrentclient.StateSeeding, got.State)
	assert.Zero(t, got.ETA)
	assert.True(t, got.IsCompleted)

	_, err = c.GetTorrent(ctx, qbtest.Hash(8))
	assert.ErrorIs(t, err, ErrTorrentNotFound)
}

func TestClient_GetAllDataEmpty(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	data, err := newTestClient(t, srv).GetAllData(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, data.Torrents)
	assert.Empty(t, data.Torrents)
	assert.NotNil(t, data.Labels)
	assert.Empty(t, data.Labels)
}

func TestClient_StopStartDialect(t *testing.T) {
	for _, tt := range []struct {
		version   string
		stopPath  string
		startPath string
	}{
		{"v4.6.2", "/torrents/pause", "/torrents/resume"},
		{"v5.0.1", "/torrents/stop", "/torrents/start"},
	} {
		t.Run(tt.version, func(t *testing.T) {
			srv := newFake(t, tt.version)
			srv.AddTorrents(qbtest.Torrent{Hash: qbtest.Hash(1), State: "downloading"})
			c := newTestClient(t, srv)
			ctx := context.Background()

			require.NoError(t, c.PauseTorrent(ctx, qbtest.Hash(1)))
			stopped, err := c.GetTorrent(ctx, qbtest.Hash(1))
			require.NoError(t, err)
			assert.Equal(t, torrentclient.StatePaused, stopped.State)

			require.NoError(t, c.ResumeTorrent(ctx, qbtest.Hash(1)))
			started, err := c.GetTorrent(ctx, qbtest.Hash(1))
			require.NoError(t, err)
			assert.Equal(t, torrentclient.StateDownloading, started.State)

			require.Len(t, srv.CallsTo(tt.stopPath), 1)
			require.Len(t, srv.CallsTo(tt.startPath), 1)
			assert.Equal(t, qbtest.Hash(1), srv.CallsTo(tt.stopPath)[0].Form.Get("hashes"))
		})
	}
}

func TestClient_RemoveTorrent(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	srv.AddTorrents(
		qbtest.Torrent{Hash: qbtest.Hash(1)},
		qbtest.Torrent{Hash: qbtest.Hash(2)},
		qbtest.Torrent{Hash: qbtest.Hash(3)},
	)
	c := newTestClient(t, srv)
	ctx := context.Background()

	require.NoError(t, c.RemoveTorrent(ctx, true, qbtest.Hash(1), qbtest.Hash(2)))
	calls := srv.CallsTo("/torrents/delete")
	require.Len(t, calls, 1)
	assert.Equal(t, qbtest.Hash(1)+"|"+qbtest.Hash(2), calls[0].Form.Get("hashes"))
	assert.Equal(t, "true", calls[0].Form.Get("deleteFiles"))
	assert.Len(t, srv.Torrents(), 1)

	require.NoError(t, c.RemoveTorrent(ctx, false, All))
	assert.Equal(t, "false", srv.CallsTo("/torrents/delete")[1].Form.Get("deleteFiles"))
	assert.Empty(t, srv.Torrents())
}

func TestClient_BulkEndpoints(t *testing.T) {
	srv := newFake(t, "v4.6.2")
	c := newTestClient(t, srv)
	ctx := context.Background()

	ops := map[string]func() error{
		"/torrents/recheck":      func() error { return c.RecheckTorrent(ctx, "a", "b") },
		"/torrents/reannounce":   func() error { return c.ReannounceTorrent(ctx, "a", "b") },
		"/torrents/increasePrio": func() error { return c.QueueUp(ctx, "a", "b") },
		"/torrents/decreasePrio": func() error { return c.QueueDown(ctx, "a", "b") },
		"/torrents/topPrio":      func() error { return c.TopPriority(ctx, "a", "b") },
		"/torrents/bottomPrio":   func() error { return c.BottomPriority(ctx, "a", "b") },
	}
	for path, op := range ops {
		require.NoError(t, op(), path)
		calls := srv.CallsTo(path)
		require.Len(t, calls, 1, path)
		assert.Equal(t, "POST", calls[0].Method, path)
		assert.Equal(t, "a|b", calls[0].Form.Get("hashes"), path)
	}
}

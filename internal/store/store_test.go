package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerjest/qbittorrent-go/pkg/qbittorrent"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SessionRoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	base := "http://qbit.lan:8080"

	_, ok, err := s.LoadSession(ctx, base)
	require.NoError(t, err)
	assert.False(t, ok)

	state := qbittorrent.SessionState{
		SID:     "abc",
		Expires: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
		Version: "v5.0.1",
	}
	require.NoError(t, s.SaveSession(ctx, base, state))

	got, ok, err := s.LoadSession(ctx, base)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state.SID, got.SID)
	assert.Equal(t, state.Version, got.Version)
	assert.True(t, state.Expires.Equal(got.Expires))
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	base := "http://qbit.lan:8080"

	require.NoError(t, s.SaveSession(ctx, base, qbittorrent.SessionState{SID: "one"}))
	require.NoError(t, s.SaveSession(ctx, base, qbittorrent.SessionState{SID: "two", Version: "v4.6.2"}))
	require.NoError(t, s.SaveSession(ctx, "http://other", qbittorrent.SessionState{SID: "other"}))

	got, ok, err := s.LoadSession(ctx, base)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", got.SID)
	assert.Equal(t, "v4.6.2", got.Version)

	var count int64
	require.NoError(t, s.db.Model(&SessionRecord{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestStore_Delete(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSession(ctx, "b", qbittorrent.SessionState{SID: "x"}))
	require.NoError(t, s.DeleteSession(ctx, "b"))

	_, ok, err := s.LoadSession(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_FileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bridge.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveSession(context.Background(), "b", qbittorrent.SessionState{SID: "x"}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, ok, err := reopened.LoadSession(context.Background(), "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", got.SID)
}

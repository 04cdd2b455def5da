package qbittorrent

import (
	"strings"
	"time"

	"github.com/pokerjest/qbittorrent-go/pkg/torrentclient"
)

// Normalize maps a raw torrent onto the shared torrent shape. Unrecognised
// state tags yield torrentclient.StateUnknown.
//
// See https://github.com/qbittorrent/qBittorrent/blob/master/src/webui/www/private/scripts/dynamicTable.js
func Normalize(t Torrent) torrentclient.NormalizedTorrent {
	state := torrentclient.StateUnknown
	stateMessage := ""
	eta := t.ETA

	switch t.State {
	case TorrentStateError:
		state = torrentclient.StateWarning
		stateMessage = "qBittorrent is reporting an error"
	case TorrentStatePausedDL, TorrentStateStoppedDL:
		state = torrentclient.StatePaused
	case TorrentStateQueuedDL, TorrentStateCheckingDL:
		state = torrentclient.StateQueued
	case TorrentStateCheckingUP:
		// Set when "recheck torrent on completion" is enabled. The check can
		// still fail, so it is not treated as completed yet.
		state = torrentclient.StateQueued
	case TorrentStateMetaDL, TorrentStateForcedMetaDL, TorrentStateForcedDL, TorrentStateDownloading:
		state = torrentclient.StateDownloading
	case TorrentStateAllocating:
		// stalledDL would be closer, queued is kept on purpose.
		state = torrentclient.StateQueued
	case TorrentStateStalledDL:
		state = torrentclient.StateWarning
		stateMessage = "The download is stalled with no connection"
	case TorrentStatePausedUP, TorrentStateStoppedUP, TorrentStateUploading,
		TorrentStateStalledUP, TorrentStateQueuedUP, TorrentStateForcedUP:
		state = torrentclient.StateSeeding
		// qBittorrent sends eta=8640000 for completed torrents
		eta = 0
	case TorrentStateMoving, TorrentStateQueuedForChecking, TorrentStateCheckingResumeData:
		state = torrentclient.StateChecking
	case TorrentStateUnknown:
		state = torrentclient.StateError
	case TorrentStateMissingFiles:
		state = torrentclient.StateError
		stateMessage = "The download is missing files"
	}

	raw := t
	return torrentclient.NormalizedTorrent{
		ID:              t.Hash,
		Name:            t.Name,
		State:           state,
		StateMessage:    stateMessage,
		ETA:             eta,
		DateAdded:       unixTime(t.AddedOn),
		DateCompleted:   unixTime(t.CompletionOn),
		IsCompleted:     t.Progress == 1,
		Progress:        t.Progress,
		Label:           t.Category,
		Tags:            splitTags(t.Tags),
		SavePath:        t.SavePath,
		UploadSpeed:     t.UpSpeed,
		DownloadSpeed:   t.DlSpeed,
		QueuePosition:   t.Priority,
		ConnectedPeers:  t.NumLeechs,
		ConnectedSeeds:  t.NumSeeds,
		TotalPeers:      t.NumIncomplete,
		TotalSeeds:      t.NumComplete,
		TotalSelected:   t.Size,
		TotalSize:       t.TotalSize,
		TotalUploaded:   t.Uploaded,
		TotalDownloaded: t.Downloaded,
		Ratio:           t.Ratio,
		Raw:             &raw,
	}
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func splitTags(tags string) []string {
	if tags == "" {
		return []string{}
	}
	return strings.Split(tags, ", ")
}

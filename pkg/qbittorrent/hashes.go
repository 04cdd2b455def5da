package qbittorrent

import (
	"strconv"
	"strings"
)

// All targets every torrent in bulk operations.
const All = "all"

// NormalizeHashes joins hashes into the pipe separated form used by bulk
// endpoints. Order is preserved and duplicates are kept.
func NormalizeHashes(hashes ...string) string {
	if len(hashes) == 1 {
		return hashes[0]
	}
	return strings.Join(hashes, "|")
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return NormalizeHashes(parts...)
}

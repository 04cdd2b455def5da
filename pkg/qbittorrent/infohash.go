package qbittorrent

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
)

const magnetPrefix = "magnet:"

// IsMagnet reports whether torrent is a magnet URI rather than .torrent
// contents.
func IsMagnet(torrent []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(torrent), []byte(magnetPrefix))
}

// MagnetInfoHash returns the lowercase hex info hash carried by a magnet URI.
func MagnetInfoHash(uri string) (string, error) {
	m, err := metainfo.ParseMagnetUri(strings.TrimSpace(uri))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMagnetMissingHash, err)
	}
	if m.InfoHash == (metainfo.Hash{}) {
		return "", ErrMagnetMissingHash
	}
	return m.InfoHash.HexString(), nil
}

// InfoHash computes the lowercase hex v1 info hash of .torrent contents.
func InfoHash(torrent []byte) (string, error) {
	mi, err := metainfo.Load(bytes.NewReader(torrent))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTorrent, err)
	}
	return mi.HashInfoBytes().HexString(), nil
}

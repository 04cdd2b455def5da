package qbtest

import (
	"bytes"
	"crypto/sha1"
	"fmt"

	"github.com/anacrolix/torrent/bencode"
	"github.com/anacrolix/torrent/metainfo"
)

// Hash returns a deterministic 40 character hex hash for i.
func Hash(i int) string {
	return fmt.Sprintf("%040x", i)
}

// Magnet returns a magnet URI for hash.
func Magnet(hash, name string) string {
	return fmt.Sprintf("magnet:?xt=urn:btih:%s&dn=%s", hash, name)
}

// TorrentFile builds a single-file .torrent and returns its contents with
// the hex info hash.
func TorrentFile(name string) ([]byte, string) {
	info := metainfo.Info{
		Name:        name,
		PieceLength: 16 * 1024,
		Length:      16 * 1024,
		Pieces:      make([]byte, sha1.Size),
	}
	infoBytes, err := bencode.Marshal(info)
	if err != nil {
		panic(err)
	}
	mi := metainfo.MetaInfo{
		InfoBytes: infoBytes,
		Announce:  "http://tracker.example.org/announce",
	}
	var buf bytes.Buffer
	if err := mi.Write(&buf); err != nil {
		panic(err)
	}
	sum := sha1.Sum(infoBytes)
	return buf.Bytes(), fmt.Sprintf("%x", sum)
}

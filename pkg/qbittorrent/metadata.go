package qbittorrent

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// SetTorrentLocation moves hashes to location.
func (c *Client) SetTorrentLocation(ctx context.Context, location string, hashes ...string) error {
	return c.bulk(ctx, "/torrents/setLocation", hashes, url.Values{"location": {location}})
}

// SetTorrentName https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#set-torrent-name
func (c *Client) SetTorrentName(ctx context.Context, hash, name string) error {
	_, err := c.post(ctx, "/torrents/rename", url.Values{"hash": {hash}, "name": {name}})
	return err
}

// SetTorrentCategory assigns category to hashes. The category must exist.
func (c *Client) SetTorrentCategory(ctx context.Context, category string, hashes ...string) error {
	return c.bulk(ctx, "/torrents/setCategory", hashes, url.Values{"category": {category}})
}

// ResetTorrentCategory removes the category of hashes.
func (c *Client) ResetTorrentCategory(ctx context.Context, hashes ...string) error {
	return c.SetTorrentCategory(ctx, "", hashes...)
}

// AddTorrentTags https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#add-torrent-tags
func (c *Client) AddTorrentTags(ctx context.Context, tags []string, hashes ...string) error {
	return c.bulk(ctx, "/torrents/addTags", hashes, url.Values{"tags": {strings.Join(tags, ",")}})
}

// RemoveTorrentTags removes tags from hashes. No tags removes all of them.
func (c *Client) RemoveTorrentTags(ctx context.Context, tags []string, hashes ...string) error {
	var extra url.Values
	if len(tags) > 0 {
		extra = url.Values{"tags": {strings.Join(tags, ",")}}
	}
	return c.bulk(ctx, "/torrents/removeTags", hashes, extra)
}

// SetFilePriority https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#set-file-priority
func (c *Client) SetFilePriority(ctx context.Context, hash string, fileIDs []int, priority FilePriority) error {
	_, err := c.post(ctx, "/torrents/filePrio", url.Values{
		"hash":     {hash},
		"id":       {joinInts(fileIDs)},
		"priority": {strconv.Itoa(int(priority))},
	})
	return err
}

// RenameFile renames the file at oldPath inside hash.
func (c *Client) RenameFile(ctx context.Context, hash, oldPath, newPath string) error {
	_, err := c.post(ctx, "/torrents/renameFile", url.Values{
		"hash":    {hash},
		"oldPath": {oldPath},
		"newPath": {newPath},
	})
	return err
}

// RenameFolder renames the folder at oldPath inside hash.
func (c *Client) RenameFolder(ctx context.Context, hash, oldPath, newPath string) error {
	_, err := c.post(ctx, "/torrents/renameFolder", url.Values{
		"hash":    {hash},
		"oldPath": {oldPath},
		"newPath": {newPath},
	})
	return err
}

// SetDownloadLimit sets the download limit in bytes/s. 0 means unlimited.
func (c *Client) SetDownloadLimit(ctx context.Context, limit int64, hashes ...string) error {
	return c.bulk(ctx, "/torrents/setDownloadLimit", hashes, url.Values{"limit": {strconv.FormatInt(limit, 10)}})
}

// SetUploadLimit sets the upload limit in bytes/s. 0 means unlimited.
func (c *Client) SetUploadLimit(ctx context.Context, limit int64, hashes ...string) error {
	return c.bulk(ctx, "/torrents/setUploadLimit", hashes, url.Values{"limit": {strconv.FormatInt(limit, 10)}})
}

// DownloadLimits returns the download limit of each hash, keyed by hash.
func (c *Client) DownloadLimits(ctx context.Context, hashes ...string) (map[string]int64, error) {
	limits := map[string]int64{}
	form := url.Values{"hashes": {NormalizeHashes(hashes...)}}
	if err := c.postJSON(ctx, "/torrents/downloadLimit", form, &limits); err != nil {
		return nil, err
	}
	return limits, nil
}

// UploadLimits returns the upload limit of each hash, keyed by hash.
func (c *Client) UploadLimits(ctx context.Context, hashes ...string) (map[string]int64, error) {
	limits := map[string]int64{}
	form := url.Values{"hashes": {NormalizeHashes(hashes...)}}
	if err := c.postJSON(ctx, "/torrents/uploadLimit", form, &limits); err != nil {
		return nil, err
	}
	return limits, nil
}

// AddTrackers https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#add-trackers-to-torrent
func (c *Client) AddTrackers(ctx context.Context, hash string, urls ...string) error {
	_, err := c.post(ctx, "/torrents/addTrackers", url.Values{
		"hash": {hash},
		"urls": {strings.Join(urls, "\n")},
	})
	return err
}

// EditTracker https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#edit-trackers
func (c *Client) EditTracker(ctx context.Context, hash, origURL, newURL string) error {
	_, err := c.post(ctx, "/torrents/editTracker", url.Values{
		"hash":    {hash},
		"origUrl": {origURL},
		"newUrl":  {newURL},
	})
	return err
}

// RemoveTrackers https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#remove-trackers
func (c *Client) RemoveTrackers(ctx context.Context, hash string, urls ...string) error {
	_, err := c.post(ctx, "/torrents/removeTrackers", url.Values{
		"hash": {hash},
		"urls": {NormalizeHashes(urls...)},
	})
	return err
}

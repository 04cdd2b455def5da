package qbittorrent

import (
	"context"
	"net/url"
	"strings"
)

// Tags https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#get-all-tags
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	tags := []string{}
	if err := c.getJSON(ctx, "/torrents/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTags https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#create-tags
func (c *Client) CreateTags(ctx context.Context, tags ...string) error {
	_, err := c.post(ctx, "/torrents/createTags", url.Values{"tags": {strings.Join(tags, ",")}})
	return err
}

// DeleteTags https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#delete-tags
func (c *Client) DeleteTags(ctx context.Context, tags ...string) error {
	_, err := c.post(ctx, "/torrents/deleteTags", url.Values{"tags": {strings.Join(tags, ",")}})
	return err
}

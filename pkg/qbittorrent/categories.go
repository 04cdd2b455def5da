package qbittorrent

import (
	"context"
	"net/url"
	"strings"
)

// Categories returns every category keyed by name.
func (c *Client) Categories(ctx context.Context) (map[string]Category, error) {
	categories := map[string]Category{}
	if err := c.getJSON(ctx, "/torrents/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#add-new-category
func (c *Client) CreateCategory(ctx context.Context, name, savePath string) error {
	_, err := c.post(ctx, "/torrents/createCategory", url.Values{
		"category": {name},
		"savePath": {savePath},
	})
	return err
}

// EditCategory https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#edit-category
func (c *Client) EditCategory(ctx context.Context, name, savePath string) error {
	_, err := c.post(ctx, "/torrents/editCategory", url.Values{
		"category": {name},
		"savePath": {savePath},
	})
	return err
}

// RemoveCategories https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#remove-categories
func (c *Client) RemoveCategories(ctx context.Context, names ...string) error {
	_, err := c.post(ctx, "/torrents/removeCategories", url.Values{
		"categories": {strings.Join(names, "\n")},
	})
	return err
}

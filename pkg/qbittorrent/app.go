package qbittorrent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// AppVersion returns the application version, e.g. "v4.6.2".
//
// https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#get-application-version
func (c *Client) AppVersion(ctx context.Context) (string, error) {
	return c.getText(ctx, "/app/version")
}

// APIVersion returns the WebUI API version, e.g. "2.9.3".
func (c *Client) APIVersion(ctx context.Context) (string, error) {
	return c.getText(ctx, "/app/webapiVersion")
}

// BuildInfo https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#get-build-info
func (c *Client) BuildInfo(ctx context.Context) (*BuildInfo, error) {
	var info BuildInfo
	if err := c.getJSON(ctx, "/app/buildInfo", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Preferences https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#get-application-preferences
func (c *Client) Preferences(ctx context.Context) (Preferences, error) {
	prefs := Preferences{}
	if err := c.getJSON(ctx, "/app/preferences", nil, &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// SetPreferences changes the keys present in prefs.
//
// https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#set-application-preferences
func (c *Client) SetPreferences(ctx context.Context, prefs Preferences) error {
	encoded, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("qbittorrent: encode preferences: %w", err)
	}
	form := url.Values{}
	form.Set("json", string(encoded))
	_, err = c.post(ctx, "/app/setPreferences", form)
	return err
}

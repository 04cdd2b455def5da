package qbittorrent

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/pokerjest/qbittorrent-go/pkg/torrentclient"
)

const defaultTorrentFilename = "torrent"

func (o AddTorrentOptions) form(d Dialect) url.Values {
	f := url.Values{}
	if o.UseAutoTMM {
		// The category decides the save path under automatic management.
		f.Set("autoTMM", "true")
	} else {
		f.Set("autoTMM", "false")
		if o.SavePath != "" {
			f.Set("savepath", o.SavePath)
		}
	}
	if o.Category != "" {
		f.Set("category", o.Category)
	}
	if len(o.Tags) > 0 {
		f.Set("tags", strings.Join(o.Tags, ","))
	}
	if o.Paused {
		f.Set(d.pausedField(), "true")
	}
	if o.SkipChecking {
		f.Set("skip_checking", "true")
	}
	if o.ContentLayout != "" {
		f.Set("contentLayout", string(o.ContentLayout))
	}
	if o.Rename != "" {
		f.Set("rename", o.Rename)
	}
	if o.UpLimit > 0 {
		f.Set("upLimit", strconv.FormatInt(o.UpLimit, 10))
	}
	if o.DlLimit > 0 {
		f.Set("dlLimit", strconv.FormatInt(o.DlLimit, 10))
	}
	if o.RatioLimit != 0 {
		f.Set("ratioLimit", strconv.FormatFloat(o.RatioLimit, 'f', -1, 64))
	}
	if o.SeedingTimeLimit != 0 {
		f.Set("seedingTimeLimit", strconv.FormatInt(o.SeedingTimeLimit, 10))
	}
	if o.SequentialDownload {
		f.Set("sequentialDownload", "true")
	}
	if o.FirstLastPiecePrio {
		f.Set("firstLastPiecePrio", "true")
	}
	return f
}

type upload struct {
	filename string
	data     []byte
}

// multipartFields lists fields in key order followed by an optional
// .torrent part named "torrents".
func multipartFields(fields url.Values, file *upload) []*resty.MultipartField {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]*resty.MultipartField, 0, len(fields)+1)
	for _, k := range keys {
		for _, v := range fields[k] {
			parts = append(parts, &resty.MultipartField{
				Param:  k,
				Reader: strings.NewReader(v),
			})
		}
	}
	if file != nil {
		parts = append(parts, &resty.MultipartField{
			Param:       "torrents",
			FileName:    file.filename,
			ContentType: "application/x-bittorrent",
			Reader:      bytes.NewReader(file.data),
		})
	}
	return parts
}

func (c *Client) add(ctx context.Context, fields url.Values, file *upload) error {
	resp, err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/torrents/add",
		multipart: multipartFields(fields, file),
		text:      true,
	})
	if err != nil {
		return err
	}
	if resp.String() == failsBody {
		return ErrAddTorrentFailed
	}
	return nil
}

// addForm authenticates first so the paused flag is spelled for the
// detected server version.
func (c *Client) addForm(ctx context.Context, opts AddTorrentOptions) (url.Values, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}
	return opts.form(c.Dialect()), nil
}

// AddTorrent uploads the contents of a .torrent file.
//
// https://github.com/qbittorrent/qBittorrent/wiki/WebUI-API-(qBittorrent-4.1)#add-new-torrent
func (c *Client) AddTorrent(ctx context.Context, torrent []byte, opts AddTorrentOptions) error {
	fields, err := c.addForm(ctx, opts)
	if err != nil {
		return err
	}
	filename := opts.Filename
	if filename == "" {
		filename = defaultTorrentFilename
	}
	return c.add(ctx, fields, &upload{filename: filename, data: torrent})
}

// AddTorrentFile uploads the .torrent file at path.
func (c *Client) AddTorrentFile(ctx context.Context, path string, opts AddTorrentOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if opts.Filename == "" {
		opts.Filename = filepath.Base(path)
	}
	return c.AddTorrent(ctx, data, opts)
}

// AddTorrentBase64 uploads base64 encoded .torrent contents.
func (c *Client) AddTorrentBase64(ctx context.Context, encoded string, opts AddTorrentOptions) error {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("qbittorrent: decode torrent: %w", err)
	}
	if opts.Filename == "" {
		opts.Filename = "file.torrent"
	}
	return c.AddTorrent(ctx, data, opts)
}

// AddMagnet adds one or more magnet or HTTP URLs.
func (c *Client) AddMagnet(ctx context.Context, urls []string, opts AddTorrentOptions) error {
	fields, err := c.addForm(ctx, opts)
	if err != nil {
		return err
	}
	fields.Set("urls", strings.Join(urls, "\n"))
	return c.add(ctx, fields, nil)
}

// NormalizedAddTorrent adds a magnet URI or .torrent contents and waits
// until the torrent appears in the listing.
func (c *Client) NormalizedAddTorrent(ctx context.Context, torrent []byte, opts torrentclient.AddTorrentOptions) (*torrentclient.NormalizedTorrent, error) {
	addOpts := AddTorrentOptions{
		Paused:   opts.StartPaused,
		Category: opts.Label,
	}

	var hash string
	if IsMagnet(torrent) {
		uri := strings.TrimSpace(string(torrent))
		h, err := MagnetInfoHash(uri)
		if err != nil {
			return nil, err
		}
		hash = h
		if err := c.AddMagnet(ctx, []string{uri}, addOpts); err != nil {
			return nil, err
		}
	} else {
		h, err := InfoHash(torrent)
		if err != nil {
			return nil, err
		}
		hash = h
		if err := c.AddTorrent(ctx, torrent, addOpts); err != nil {
			return nil, err
		}
	}

	c.log.WithFields(logrus.Fields{"hash": hash, "paused": opts.StartPaused}).Debug("torrent added, waiting for listing")
	return c.waitForTorrent(ctx, hash)
}

// waitForTorrent polls GetTorrent until hash shows up or AddTimeout passes.
func (c *Client) waitForTorrent(ctx context.Context, hash string) (*torrentclient.NormalizedTorrent, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.AddTimeout)
	defer cancel()

	ticker := time.NewTicker(c.cfg.AddPollInterval)
	defer ticker.Stop()

	for {
		t, err := c.GetTorrent(waitCtx, hash)
		if err == nil {
			return t, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if waitCtx.Err() != nil {
			return nil, ErrTorrentNotFound
		}
		if !errors.Is(err, ErrTorrentNotFound) {
			return nil, err
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrTorrentNotFound
		case <-ticker.C:
		}
	}
}

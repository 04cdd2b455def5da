package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pokerjest/qbittorrent-go/internal/event"
	"github.com/pokerjest/qbittorrent-go/pkg/qbittorrent"
	"github.com/pokerjest/qbittorrent-go/pkg/torrentclient"
)

// maxTorrentSize bounds uploaded .torrent files.
const maxTorrentSize = 10 << 20

// Backend is the torrent client the bridge fronts.
type Backend interface {
	torrentclient.Client
	AppVersion(ctx context.Context) (string, error)
	Dialect() qbittorrent.Dialect
}

type Handlers struct {
	backend Backend
	bus     event.Bus
	log     logrus.FieldLogger
}

func NewHandlers(backend Backend, bus event.Bus, log logrus.FieldLogger) *Handlers {
	return &Handlers{backend: backend, bus: bus, log: log.WithField("component", "api")}
}

type addTorrentRequest struct {
	Magnet      string `json:"magnet" binding:"required"`
	Label       string `json:"label"`
	StartPaused bool   `json:"start_paused"`
}

// === Torrents ===

func (h *Handlers) ListTorrentsHandler(c *gin.Context) {
	data, err := h.backend.GetAllData(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *Handlers) GetTorrentHandler(c *gin.Context) {
	t, err := h.backend.GetTorrent(c.Request.Context(), strings.ToLower(c.Param("hash")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handlers) AddTorrentHandler(c *gin.Context) {
	var (
		payload []byte
		opts    torrentclient.AddTorrentOptions
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("torrent")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing torrent file"})
			return
		}
		if fh.Size > maxTorrentSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "torrent file too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()
		payload, err = io.ReadAll(io.LimitReader(f, maxTorrentSize))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts.Label = c.PostForm("label")
		opts.StartPaused, _ = strconv.ParseBool(c.PostForm("start_paused"))
	} else {
		var req addTorrentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !qbittorrent.IsMagnet([]byte(req.Magnet)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "magnet must start with magnet:"})
			return
		}
		payload = []byte(req.Magnet)
		opts = torrentclient.AddTorrentOptions{Label: req.Label, StartPaused: req.StartPaused}
	}

	t, err := h.backend.NormalizedAddTorrent(c.Request.Context(), payload, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.WithFields(logrus.Fields{"hash": t.ID, "name": t.Name}).Info("torrent added")
	c.JSON(http.StatusCreated, t)
}

func (h *Handlers) PauseTorrentHandler(c *gin.Context) {
	hash := strings.ToLower(c.Param("hash"))
	if err := h.backend.PauseTorrent(c.Request.Context(), hash); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) ResumeTorrentHandler(c *gin.Context) {
	hash := strings.ToLower(c.Param("hash"))
	if err := h.backend.ResumeTorrent(c.Request.Context(), hash); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) DeleteTorrentHandler(c *gin.Context) {
	hash := strings.ToLower(c.Param("hash"))
	deleteFiles := false
	if v := c.Query("delete_files"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "delete_files must be a boolean"})
			return
		}
		deleteFiles = parsed
	}
	if err := h.backend.RemoveTorrent(c.Request.Context(), deleteFiles, hash); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// === Version ===

func (h *Handlers) VersionHandler(c *gin.Context) {
	version, err := h.backend.AppVersion(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"version": version,
		"dialect": h.backend.Dialect().String(),
	})
}

// fail maps client errors onto HTTP statuses.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, qbittorrent.ErrTorrentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, qbittorrent.ErrMagnetMissingHash):
		status = http.StatusBadRequest
	case errors.Is(err, qbittorrent.ErrAddTorrentFailed):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, qbittorrent.ErrInvalidTorrent):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		status = 499 // client closed request
	}
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Warn("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

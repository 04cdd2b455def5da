package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// InitRoutes registers the bridge API on r. metricsHandler is served at
// /metrics when non-nil.
func InitRoutes(r *gin.Engine, h *Handlers, metricsHandler http.Handler) {
	r.Use(RequestLogger(h.log), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/version", h.VersionHandler)
		apiGroup.GET("/events", h.SSEHandler)

		// Torrents
		apiGroup.GET("/torrents", h.ListTorrentsHandler)
		apiGroup.POST("/torrents", h.AddTorrentHandler)
		apiGroup.GET("/torrents/:hash", h.GetTorrentHandler)
		apiGroup.DELETE("/torrents/:hash", h.DeleteTorrentHandler)
		apiGroup.POST("/torrents/:hash/pause", h.PauseTorrentHandler)
		apiGroup.POST("/torrents/:hash/resume", h.ResumeTorrentHandler)
	}
}

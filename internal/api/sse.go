package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/pokerjest/qbittorrent-go/internal/event"
)

// sseBuffer is how many events a slow client may fall behind before
// events are dropped for it.
const sseBuffer = 32

// SSEHandler streams every torrent event to the client. The SSE event
// name is the event type and the data is the JSON encoded event.
func (h *Handlers) SSEHandler(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan event.Event, sseBuffer)
	unsubscribe := event.SubscribeAll(h.bus, func(e event.Event) {
		// Never block the bus on a slow client.
		select {
		case clientChan <- e:
		default:
			h.log.WithField("type", e.Type).Debug("sse client lagging, event dropped")
		}
	})
	defer func() {
		unsubscribe()
		h.log.Debug("sse client disconnected")
	}()

	c.SSEvent("message", "connected")
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case evt := <-clientChan:
			data, err := json.Marshal(evt)
			if err != nil {
				h.log.WithError(err).Warn("sse marshal failed")
				continue
			}
			c.SSEvent(string(evt.Type), string(data))
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}

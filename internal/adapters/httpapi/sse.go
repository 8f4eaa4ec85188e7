package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/broadcast"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
)

// updates streams events to the client until it disconnects. Each
// subscriber gets the current snapshot first, then every published event
// in order. Quiet periods produce keepalive events so intermediaries do
// not cut the connection.
func (s *Server) updates(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := s.hub.Register()
	defer s.hub.Unregister(sub)

	ctx := c.Request.Context()
	for {
		ev, err := s.hub.NextEvent(ctx, sub)
		if err != nil {
			if !errors.Is(err, broadcast.ErrSubscriberClosed) && !errors.Is(err, ctx.Err()) {
				s.obs.LogError("sse_stream_failed", err, ports.Field{Key: "subscriber", Value: sub.ID})
			}
			return
		}

		data, err := json.Marshal(ev)
		if err != nil {
			s.obs.LogError("sse_marshal_failed", err)
			continue
		}
		if _, err := fmt.Fprintf(c.Writer, "event: message\ndata: %s\n\n", data); err != nil {
			return
		}
		flusher.Flush()
	}
}

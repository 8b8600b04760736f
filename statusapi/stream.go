package statusapi

import (
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/servicecore/errors"
	"github.com/kbukum/servicecore/logger"
)

// Kept below common proxy idle timeouts.
var keepAliveInterval = 30 * time.Second

type connectedEvent struct {
	ClientID string `json:"client_id"`
	Pattern  string `json:"pattern"`
}

// Events streams registry events as Server-Sent Events. The optional
// service query parameter is a glob over service keys and defaults to "*".
func (h *Handlers) Events(c *gin.Context) {
	pattern := c.DefaultQuery("service", "*")
	if _, err := path.Match(pattern, ""); err != nil {
		RespondWithError(c, errors.InvalidInput("service", fmt.Sprintf("%q is not a valid pattern", pattern)))
		return
	}

	h.events.serve(c.Writer, c.Request, uuid.NewString(), pattern)
}

func (h *EventHub) serve(w http.ResponseWriter, r *http.Request, id, pattern string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	log := h.log.WithFields(logger.Fields("client_id", id))

	// Streams outlive the server's WriteTimeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("Could not clear write deadline", logger.Fields("error", err.Error()))
	}

	s := &subscriber{id: id, pattern: pattern, events: make(chan Event, clientBuffer)}
	if !h.subscribe(s) {
		http.Error(w, "event hub stopped", http.StatusServiceUnavailable)
		return
	}
	defer h.unsubscribe(s)

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	writeEvent(w, EventConnected, marshalJSON(connectedEvent{ClientID: id, Pattern: pattern}))
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug("Event stream closed by client")
			return

		case e, ok := <-s.events:
			if !ok {
				return
			}
			writeEvent(w, e.Type, marshalJSON(e))
			flusher.Flush()

		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, data []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

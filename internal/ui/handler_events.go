package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/me/streamsafe/internal/obs"
)

// HandleEvents streams processing-progress events to the browser via
// Server-Sent Events. Each connected dashboard gets its own hub
// subscription; the subscription ends when the client disconnects.
// GET /events
func (ui *UI) HandleEvents(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	// Set headers for SSE.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	events := ui.hub.Subscribe(r.Context())
	ui.logger.Debug("sse client connected", "user_id", sess.User.ID)

	flusher.Flush()

	// Heartbeats keep intermediaries from closing an idle stream.
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			ui.logger.Debug("sse client disconnected", "user_id", sess.User.ID)
			return
		case ev, open := <-events:
			if !open {
				return
			}
			if err := sendSSEEvent(w, flusher, "progress", ev); err != nil {
				ui.logger.Debug("sse write failed", "user_id", sess.User.ID, "error", err)
				return
			}
			obs.EventsRelayed.Inc()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData)
	if err != nil {
		return err
	}

	flusher.Flush()
	return nil
}

package realtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/me/streamsafe/internal/obs"
	"github.com/me/streamsafe/pkg/model"
)

// Feed holds the single persistent connection to the platform's push
// endpoint and republishes every progress event into the hub.
//
// There is deliberately no reconnect or backoff: when the connection
// drops, Run returns and the console keeps serving with a stale
// progress cache until restarted.
type Feed struct {
	url    string
	hub    *Hub
	logger *slog.Logger
	dialer *websocket.Dialer
}

// NewFeed creates a feed for the given push address.
func NewFeed(url string, hub *Hub, logger *slog.Logger) *Feed {
	return &Feed{
		url:    url,
		hub:    hub,
		logger: logger.With("component", "realtime"),
		dialer: websocket.DefaultDialer,
	}
}

// Run connects and pumps events until the context ends or the
// connection fails. A context cancellation returns ctx.Err(); any other
// exit returns the read error.
func (f *Feed) Run(ctx context.Context) error {
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", f.url, err)
	}
	f.logger.Info("push channel connected", "url", f.url)

	// Unblock the read loop when the context ends.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var ev model.ProgressEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.logger.Warn("push channel closed", "error", err)
			return err
		}

		f.logger.Debug("progress event", "video_id", ev.VideoID, "progress", ev.Progress, "status", ev.Status)
		obs.EventsReceived.Inc()
		f.hub.Publish(ev)
	}
}

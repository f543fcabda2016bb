package realtime

import (
	"context"
	"sync"

	"github.com/me/streamsafe/pkg/model"
)

// Hub fans progress events out to all active subscribers (the SSE relays
// of connected browsers) and keeps the latest event per video so a
// freshly fetched list can be brought up to date before render.
//
// Delivery is last-write-wins in arrival order: there is no sequence
// number, no dedup, and no buffering beyond a small per-subscriber
// channel. A slow subscriber drops events rather than blocking the feed.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan model.ProgressEvent
	next   int
	latest map[string]model.ProgressEvent
}

// NewHub initialises an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:   make(map[int]chan model.ProgressEvent),
		latest: make(map[string]model.ProgressEvent),
	}
}

// Subscribe registers a subscriber and returns a channel which will
// receive events. The channel is closed and the subscription removed
// when the provided context ends.
func (h *Hub) Subscribe(ctx context.Context) <-chan model.ProgressEvent {
	ch := make(chan model.ProgressEvent, 16)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Publish records the event as the latest for its video and delivers it
// to every subscriber whose channel has room.
func (h *Hub) Publish(ev model.ProgressEvent) {
	h.mu.Lock()
	h.latest[ev.VideoID] = ev
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default: // subscriber is behind; it will catch up from a later event
		}
	}
	h.mu.Unlock()
}

// Snapshot returns a copy of the latest event per video.
func (h *Hub) Snapshot() map[string]model.ProgressEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]model.ProgressEvent, len(h.latest))
	for id, ev := range h.latest {
		out[id] = ev
	}
	return out
}

// MergeSnapshot applies the latest known progress to a fetched video
// list in place. Videos with no recorded event are left untouched.
func (h *Hub) MergeSnapshot(videos []model.Video) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := range videos {
		if ev, ok := h.latest[videos[i].ID]; ok {
			videos[i].ProcessingProgress = ev.Progress
			videos[i].SensitivityStatus = ev.Status
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

const defaultSubscriberBuffer = 16

// BroadcastHook fans committed widget events out to in-process subscribers.
// Slow subscribers miss events instead of blocking the store.
type BroadcastHook struct {
	mu      sync.RWMutex
	subs    map[int]chan WidgetEvent
	next    int
	buffer  int
	dropped atomic.Uint64
}

// NewBroadcastHook creates a broadcast hook; buffer <= 0 uses the default size.
func NewBroadcastHook(buffer int) *BroadcastHook {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &BroadcastHook{
		subs:   make(map[int]chan WidgetEvent),
		buffer: buffer,
	}
}

// WidgetUpdated satisfies RefreshHook and broadcasts the event.
func (h *BroadcastHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (h *BroadcastHook) Dropped() uint64 {
	return h.dropped.Load()
}

// Subscribe returns a channel of widget events and a cancel func.
func (h *BroadcastHook) Subscribe() (<-chan WidgetEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan WidgetEvent, h.buffer)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams widget events as JSON.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams widget events as Server-Sent Events named after the reason.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.Subscribe()
	defer cancel()

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				return
			}
			if _, err := w.Write([]byte("event: " + event.Reason + "\ndata: " + string(data) + "\n\n")); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// RefreshHooks notifies every hook in order and joins their errors.
type RefreshHooks []RefreshHook

// WidgetUpdated satisfies RefreshHook.
func (hooks RefreshHooks) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	var errs error
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook.WidgetUpdated(ctx, event); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// Package realtime fans store signals out to any number of listeners, such
// as websocket sessions watching searches happen.
//
// Delivery is best effort: each listener has its own buffered channel and an
// event that does not fit is dropped for that listener only, so a slow
// client never holds up the store. There is no replay; a listener only sees
// events broadcast after it registered.
package realtime

import (
	"sync"

	"github.com/rubiojr/amosearch/pkg/filters"
	"github.com/rubiojr/amosearch/pkg/state"
)

// DefaultBufferSize is used when NewHub is given a non-positive size.
const DefaultBufferSize = 32

// SignalEvent is the wire form of an applied signal.
//
// Fields:
//   - Type:      signal type, e.g. "search-loaded".
//   - Version:   store version after the signal was applied.
//   - Page:      requested page (search signals only).
//   - Filters:   requested filters (search signals only).
//   - Count:     total hits (search-loaded only).
//   - ClientApp: new client app (client-app-changed only).
type SignalEvent struct {
	Type      state.SignalType `json:"type"`
	Version   uint64           `json:"version"`
	Page      int              `json:"page,omitempty"`
	Filters   filters.Filters  `json:"filters,omitempty"`
	Count     int              `json:"count,omitempty"`
	ClientApp string           `json:"clientApp,omitempty"`
}

// NewSignalEvent describes sig as applied in snapshot s.
func NewSignalEvent(sig state.Signal, s state.State) SignalEvent {
	ev := SignalEvent{Type: sig.Type(), Version: s.Version}
	switch v := sig.(type) {
	case state.SearchStarted:
		ev.Page, ev.Filters = v.Page, v.Filters
	case state.SearchLoaded:
		ev.Page, ev.Filters = v.Page, v.Filters
		if v.Results != nil {
			ev.Count = v.Results.Count
		}
	case state.SearchFailed:
		ev.Page, ev.Filters = v.Page, v.Filters
	case state.ClientAppChanged:
		ev.ClientApp = v.ClientApp
	}
	return ev
}

// Hub is an in-memory fan-out dispatcher. It is safe for concurrent use.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan SignalEvent
	nextID    uint64
	bufSize   int
}

// NewHub builds a hub with the given per-listener buffer size.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Hub{
		listeners: make(map[uint64]chan SignalEvent),
		bufSize:   bufSize,
	}
}

// Register adds a listener. Callers must Unregister it when done.
func (h *Hub) Register() (uint64, <-chan SignalEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan SignalEvent, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes a listener and closes its channel. Unknown ids are ignored.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers ev to every listener with room for it.
func (h *Hub) Broadcast(ev SignalEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Size returns the number of registered listeners.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Attach broadcasts every signal applied to store. The returned function
// detaches the hub again.
func (h *Hub) Attach(store *state.Store) func() {
	return store.Subscribe(func(sig state.Signal, s state.State) {
		h.Broadcast(NewSignalEvent(sig, s))
	})
}

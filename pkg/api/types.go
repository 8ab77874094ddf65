package api

import (
	"time"

	"github.com/rubiojr/amosearch/pkg/realtime"
	"github.com/rubiojr/amosearch/pkg/state"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type CategoryResponse struct {
	Outcome string            `json:"outcome"`
	Search  state.SearchState `json:"search"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// StreamMessage is one websocket frame. The first frame of a session has
// Type "init" and carries the current snapshot; every later frame wraps a
// signal.
type StreamMessage struct {
	Type   string                `json:"type"`
	State  *state.State          `json:"state,omitempty"`
	Signal *realtime.SignalEvent `json:"signal,omitempty"`
}

package state

import (
	"github.com/rubiojr/amosearch/pkg/filters"
)

// SignalType names a state transition.
type SignalType string

const (
	SignalSearchStarted    SignalType = "search-started"
	SignalSearchLoaded     SignalType = "search-loaded"
	SignalSearchFailed     SignalType = "search-failed"
	SignalClientAppChanged SignalType = "client-app-changed"
)

// Signal is a state transition notification.
type Signal interface {
	Type() SignalType
}

// SearchStarted is emitted right before a search request goes out.
type SearchStarted struct {
	Page    int
	Filters filters.Filters
}

func (SearchStarted) Type() SignalType { return SignalSearchStarted }

// SearchLoaded carries the results of a completed search.
type SearchLoaded struct {
	Page    int
	Filters filters.Filters
	Results *Results
}

func (SearchLoaded) Type() SignalType { return SignalSearchLoaded }

// SearchFailed only identifies the request that failed; the cause is not
// carried.
type SearchFailed struct {
	Page    int
	Filters filters.Filters
}

func (SearchFailed) Type() SignalType { return SignalSearchFailed }

// ClientAppChanged switches the client application searches are scoped to.
type ClientAppChanged struct {
	ClientApp string
}

func (ClientAppChanged) Type() SignalType { return SignalClientAppChanged }

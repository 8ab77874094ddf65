// Package state holds the single, versioned search state snapshot shared by
// the API server and the CLI, and the signals that move it forward.
//
// Snapshots are values. Reduce never mutates its input: every applied signal
// produces a fresh State with a higher Version, and maps inside a snapshot
// are never written after the snapshot is published.
package state

import (
	"github.com/rubiojr/amosearch/pkg/filters"
)

// Addon is a single search hit as returned by the add-ons API.
type Addon struct {
	ID            int     `json:"id"`
	GUID          string  `json:"guid"`
	Slug          string  `json:"slug"`
	Name          string  `json:"name"`
	Summary       string  `json:"summary,omitempty"`
	Type          string  `json:"type"`
	URL           string  `json:"url,omitempty"`
	AverageRating float64 `json:"average_rating"`
	Users         int     `json:"average_daily_users"`
}

// Results is the payload of a successful search.
type Results struct {
	Count    int     `json:"count"`
	Next     string  `json:"next,omitempty"`
	Previous string  `json:"previous,omitempty"`
	Addons   []Addon `json:"results"`
}

// SearchState tracks the one current result set.
type SearchState struct {
	Filters filters.Filters `json:"filters"`
	Page    int             `json:"page"`
	Loading bool            `json:"loading"`
	Results *Results        `json:"results,omitempty"`
}

// APIState describes how searches are issued for the current client.
type APIState struct {
	ClientApp string `json:"clientApp"`
	Lang      string `json:"lang,omitempty"`
}

// State is the whole store snapshot.
type State struct {
	Version uint64      `json:"version"`
	API     APIState    `json:"api"`
	Auth    bool        `json:"auth"`
	Search  SearchState `json:"search"`
}

// New returns the initial snapshot for a client.
func New(api APIState, auth bool) State {
	return State{
		API:  api,
		Auth: auth,
		Search: SearchState{
			Filters: filters.Filters{},
			Page:    1,
		},
	}
}

// Reduce applies a signal and returns the next snapshot. Signals it does not
// know leave the state untouched, version included.
func Reduce(s State, sig Signal) State {
	switch v := sig.(type) {
	case SearchStarted:
		s.Search = SearchState{
			Filters: v.Filters.Clone(),
			Page:    v.Page,
			Loading: true,
		}
	case SearchLoaded:
		s.Search = SearchState{
			Filters: v.Filters.Clone(),
			Page:    v.Page,
			Results: v.Results,
		}
	case SearchFailed:
		s.Search = SearchState{
			Filters: v.Filters.Clone(),
			Page:    v.Page,
		}
	case ClientAppChanged:
		s.API.ClientApp = v.ClientApp
	default:
		return s
	}
	s.Version++
	return s
}

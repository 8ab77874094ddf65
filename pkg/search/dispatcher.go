package search

import (
	"context"

	"github.com/rubiojr/amosearch/pkg/filters"
	"github.com/rubiojr/amosearch/pkg/log"
	"github.com/rubiojr/amosearch/pkg/state"
)

var logger = log.ForService("search")

// Outcome is how a load request ended.
type Outcome int

const (
	// OutcomeSkipped means there were no filters to search with.
	OutcomeSkipped Outcome = iota
	// OutcomeCached means the store already held the requested results.
	OutcomeCached
	OutcomeLoaded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeCached:
		return "cached"
	case OutcomeLoaded:
		return "loaded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Request identifies one search.
type Request struct {
	Page         int
	Filters      filters.Filters
	API          state.APIState
	AuthRequired bool
}

// Searcher runs a search against the add-ons API.
type Searcher interface {
	Search(ctx context.Context, req Request) (*state.Results, error)
}

// Dispatcher performs searches and reports their progress as signals.
type Dispatcher struct {
	searcher Searcher
	emit     func(state.Signal)
}

// NewDispatcher returns a Dispatcher emitting signals through emit.
func NewDispatcher(searcher Searcher, emit func(state.Signal)) *Dispatcher {
	return &Dispatcher{searcher: searcher, emit: emit}
}

// Perform emits SearchStarted, runs the search in the background and emits
// SearchLoaded or SearchFailed when it completes. The returned channel
// yields the outcome once and is then closed.
//
// The search is detached from ctx cancellation: once started it always
// completes and always emits its terminal signal.
func (d *Dispatcher) Perform(ctx context.Context, req Request) <-chan Outcome {
	if req.Filters.Empty() {
		logger.Debugf("no filters, not searching")
		return resolved(OutcomeSkipped)
	}

	page, f := req.Page, req.Filters.Clone()
	req.Filters = f

	d.emit(state.SearchStarted{Page: page, Filters: f})

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		results, err := d.searcher.Search(context.WithoutCancel(ctx), req)
		if err != nil {
			logger.Debugf("search for page %d %v failed: %v", page, f, err)
			d.emit(state.SearchFailed{Page: page, Filters: f})
			out <- OutcomeFailed
			return
		}
		d.emit(state.SearchLoaded{Page: page, Filters: f, Results: results})
		out <- OutcomeLoaded
	}()
	return out
}

// Wait blocks until an outcome is available or ctx is done.
func Wait(ctx context.Context, ch <-chan Outcome) (Outcome, error) {
	select {
	case o := <-ch:
		return o, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func resolved(o Outcome) <-chan Outcome {
	ch := make(chan Outcome, 1)
	ch <- o
	close(ch)
	return ch
}

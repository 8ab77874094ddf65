// Package search decides when a search has to be issued for a location and
// issues it.
//
// # Overview
//
// A location is the query string of a search page (`?q=tabs&type=extension&page=2`)
// or, for category browsing, the route parameters of a category page. The
// package turns either into internal filters (see package filters), compares
// them with the one result set tracked in the state store and only goes to
// the network when the store does not already hold, or is not already
// loading, those filters and that page.
//
// # Signals
//
// A Dispatcher never writes state directly. It emits signals through the
// function it was built with, normally (*state.Store).Dispatch:
//
//   - state.SearchStarted, synchronously, before the request goes out
//   - exactly one of state.SearchLoaded or state.SearchFailed once it completes
//
// Searching without any filter is a no-op: nothing is emitted and the
// returned outcome is OutcomeSkipped.
//
// # Usage
//
//	store := state.NewStore(state.New(state.APIState{ClientApp: "firefox"}, false))
//	d := search.NewDispatcher(client, store.Dispatch)
//
//	loc := search.Location{Query: filters.FromValues(r.URL.Query())}
//	outcome := <-search.LoadIfNeeded(ctx, loc, store.State(), d)
//	props := search.DeriveViewProps(store.State(), loc.Query)
//
// In-flight requests are never cancelled. Two loads for different filters
// both run to completion and the one finishing last owns the store.
package search

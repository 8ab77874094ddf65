package search

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"unicode"

	"github.com/rubiojr/amosearch/pkg/filters"
	"github.com/rubiojr/amosearch/pkg/state"
)

// PageParam is the query parameter carrying the 1-based result page.
const PageParam = "page"

// Location is what a page was requested with.
type Location struct {
	Query filters.Params
}

// RouteParams are the path parameters of a category page. They are already
// shaped like internal filters.
type RouteParams struct {
	AddonType   string
	Slug        string
	Application string
}

// ViewProps is what a search page renders from. Search is only set when the
// store holds results for the filters in the location, so that a page never
// shows results of an earlier, unrelated search.
type ViewProps struct {
	HasSearchParams bool
	Filters         filters.Filters
	Search          *state.SearchState
}

// MarshalJSON flattens the merged search state next to hasSearchParams.
// The search state's filters take precedence; Filters fills in when the
// state carries none.
func (p ViewProps) MarshalJSON() ([]byte, error) {
	if p.Search == nil {
		return json.Marshal(struct {
			HasSearchParams bool `json:"hasSearchParams"`
		}{p.HasSearchParams})
	}
	merged := *p.Search
	if merged.Filters == nil {
		merged.Filters = p.Filters
	}
	return json.Marshal(struct {
		HasSearchParams bool `json:"hasSearchParams"`
		state.SearchState
	}{p.HasSearchParams, merged})
}

// ComputeFilters maps a location query to filters. The store's client app
// always replaces whatever app the URL asked for.
func ComputeFilters(query filters.Params, clientApp string) filters.Filters {
	merged := query.Clone()
	if merged == nil {
		merged = filters.Params{}
	}
	merged[filters.ParamApp] = clientApp
	return filters.ToFilters(merged)
}

// ParsePage reads a page number the way browsers parse integers: leading
// whitespace and a sign are accepted, parsing stops at the first non-digit.
// Anything that does not yield a number of at least 1 is page 1.
func ParsePage(raw string) int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		d := int(s[digits] - '0')
		if n > (math.MaxInt-d)/10 {
			return 1
		}
		n = n*10 + d
	}
	if digits == 0 || neg || n < 1 {
		return 1
	}
	return n
}

// IsLoaded reports whether the store already holds, and is not loading,
// the given page for the given filters.
func IsLoaded(s state.SearchState, page int, f filters.Filters) bool {
	return filters.Match(f, s.Filters) && s.Page == page && !s.Loading
}

// DeriveViewProps builds the view model for a search page.
func DeriveViewProps(s state.State, query filters.Params) ViewProps {
	f := ComputeFilters(query, s.API.ClientApp)

	// Only raw query values count. The store's client app goes into every
	// request and is not enough to search on by itself.
	hasSearchParams := false
	for _, v := range query {
		if v != "" {
			hasSearchParams = true
			break
		}
	}

	stateMatchesLocation := filters.Match(query, filters.ToQueryParams(s.Search.Filters))
	if !hasSearchParams || !stateMatchesLocation {
		return ViewProps{HasSearchParams: hasSearchParams}
	}

	props := ViewProps{HasSearchParams: true, Filters: f}
	current := s.Search
	props.Search = &current
	// Search state is merged last, its filters win.
	if current.Filters != nil {
		props.Filters = current.Filters
	}
	return props
}

// Performer issues searches. *Dispatcher is the production implementation.
type Performer interface {
	Perform(ctx context.Context, req Request) <-chan Outcome
}

// LoadIfNeeded searches for the location's filters and page unless the store
// already has them.
func LoadIfNeeded(ctx context.Context, loc Location, s state.State, p Performer) <-chan Outcome {
	page := ParsePage(loc.Query[PageParam])
	f := ComputeFilters(loc.Query, s.API.ClientApp)
	return loadIfNeeded(ctx, s, p, page, f)
}

// LoadByCategoryIfNeeded is LoadIfNeeded for category pages: filters come
// straight from the route instead of the query string.
func LoadByCategoryIfNeeded(ctx context.Context, loc Location, params RouteParams, s state.State, p Performer) <-chan Outcome {
	f := filters.Filters{}
	set := func(key, value string) {
		if value != "" {
			f[key] = value
		}
	}
	set(filters.FilterAddonType, params.AddonType)
	set(filters.FilterCategory, params.Slug)
	set(filters.FilterClientApp, params.Application)

	page := ParsePage(loc.Query[PageParam])
	return loadIfNeeded(ctx, s, p, page, f)
}

func loadIfNeeded(ctx context.Context, s state.State, p Performer, page int, f filters.Filters) <-chan Outcome {
	if IsLoaded(s.Search, page, f) {
		logger.Debugf("page %d for %v already loaded", page, f)
		return resolved(OutcomeCached)
	}
	return p.Perform(ctx, Request{
		Page:         page,
		Filters:      f,
		API:          s.API,
		AuthRequired: s.Auth,
	})
}

// Package filters translates between the URL-facing query parameters used by
// the add-on search pages and the internal filter keys used by the search
// state and the search API.
//
// We use our own keys internally for things like the user's clientApp and
// addonType, but URLs use shorter historic names (`q` for the query, `app`
// for the client application). Both representations are flat string maps.
package filters

import (
	"net/url"
)

// Params holds URL-facing query parameters. A location may carry keys that
// are not search filters (e.g. "page"); the mapper ignores them.
type Params map[string]string

// Filters holds search constraints keyed by internal filter names.
type Filters map[string]string

// External query parameter keys.
const (
	ParamApp      = "app"
	ParamCategory = "category"
	ParamQuery    = "q"
	ParamType     = "type"
)

// Internal filter keys.
const (
	FilterClientApp = "clientApp"
	FilterCategory  = "category"
	FilterQuery     = "query"
	FilterAddonType = "addonType"
)

// Pair binds one external key to its internal counterpart.
type Pair struct {
	Param  string
	Filter string
}

// keyMap is iterated in this order by every conversion.
var keyMap = [...]Pair{
	{Param: ParamApp, Filter: FilterClientApp},
	{Param: ParamCategory, Filter: FilterCategory},
	{Param: ParamQuery, Filter: FilterQuery},
	{Param: ParamType, Filter: FilterAddonType},
}

// Keys returns the key map in iteration order.
func Keys() []Pair {
	out := make([]Pair, len(keyMap))
	copy(out, keyMap[:])
	return out
}

// Present reports whether a looked up value counts as set: the key exists
// and the value is not the empty string.
func Present(v string, ok bool) bool {
	return ok && v != ""
}

// ToQueryParams converts internal filters to URL query parameters. Unknown
// filter keys and empty values are dropped.
func ToQueryParams(f Filters) Params {
	out := make(Params, len(keyMap))
	for _, k := range keyMap {
		if v, ok := f[k.Filter]; Present(v, ok) {
			out[k.Param] = v
		}
	}
	return out
}

// ToFilters converts URL query parameters to internal filters. Unknown
// parameters (including "page") and empty values are dropped.
func ToFilters(p Params) Filters {
	out := make(Filters, len(keyMap))
	for _, k := range keyMap {
		if v, ok := p[k.Param]; Present(v, ok) {
			out[k.Filter] = v
		}
	}
	return out
}

// Match reports whether every key of a holds the same value in b. Keys only
// present in b are not checked, so Match(a, b) and Match(b, a) can differ.
// A key of a that b lacks is a mismatch.
func Match[M ~map[string]string](a, b M) bool {
	for k, v := range a {
		other, ok := b[k]
		if !ok || other != v {
			return false
		}
	}
	return true
}

// FromValues flattens parsed URL values to their first value per key.
func FromValues(v url.Values) Params {
	out := make(Params, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			out[k] = vals[0]
		} else {
			out[k] = ""
		}
	}
	return out
}

// Empty reports whether no filter is set at all.
func (f Filters) Empty() bool {
	return len(f) == 0
}

// Clone returns a copy of f.
func (f Filters) Clone() Filters {
	if f == nil {
		return nil
	}
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Clone returns a copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

package api

import (
	"net/http"
	"time"

	"github.com/rubiojr/amosearch/pkg/filters"
	"github.com/rubiojr/amosearch/pkg/search"
	"github.com/rubiojr/amosearch/pkg/version"
)

// HandleSearch loads the request's location if the store does not hold it
// yet and responds with the view props for that location. With wait=false
// it responds as soon as the search has started.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	wait := values.Get("wait") != "false"
	values.Del("wait")
	loc := search.Location{Query: filters.FromValues(values)}

	ch := search.LoadIfNeeded(r.Context(), loc, s.store.State(), s.performer)
	if wait {
		outcome, err := search.Wait(r.Context(), ch)
		if err != nil {
			logger.Debugf("client went away while searching: %v", err)
			return
		}
		logger.Debugf("search %v: %s", loc.Query, outcome)
	}

	s.writeJSON(w, http.StatusOK, search.DeriveViewProps(s.store.State(), loc.Query))
}

// HandleCategory is HandleSearch for category pages.
func (s *Server) HandleCategory(w http.ResponseWriter, r *http.Request) {
	params := search.RouteParams{
		Application: r.PathValue("application"),
		AddonType:   r.PathValue("addonType"),
		Slug:        r.PathValue("slug"),
	}
	loc := search.Location{Query: filters.FromValues(r.URL.Query())}

	ch := search.LoadByCategoryIfNeeded(r.Context(), loc, params, s.store.State(), s.performer)
	outcome, err := search.Wait(r.Context(), ch)
	if err != nil {
		logger.Debugf("client went away while browsing %+v: %v", params, err)
		return
	}

	s.writeJSON(w, http.StatusOK, CategoryResponse{
		Outcome: outcome.String(),
		Search:  s.store.State().Search,
	})
}

// HandleNotFound answers API paths no other route claims.
func (s *Server) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, "not_found", r.Method+" "+r.URL.Path+" is not an API route")
}

func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}

package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rubiojr/amosearch/pkg/addonsapi"
	"github.com/rubiojr/amosearch/pkg/config"
	"github.com/rubiojr/amosearch/pkg/filters"
	"github.com/rubiojr/amosearch/pkg/search"
	"github.com/rubiojr/amosearch/pkg/state"
)

// session bundles what every search-issuing command needs.
type session struct {
	store      *state.Store
	dispatcher *search.Dispatcher
}

// newSession builds the API client, the store and the dispatcher from cfg.
func newSession(cfg *config.Config) (*session, error) {
	client, err := addonsapi.New(addonsapi.Config{
		BaseURL: cfg.APIURL,
		Token:   cfg.AuthToken,
		Timeout: cfg.RequestTimeout.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}

	store := state.NewStore(state.New(state.APIState{
		ClientApp: cfg.ClientApp,
		Lang:      cfg.Lang,
	}, cfg.AuthRequired))

	return &session{
		store:      store,
		dispatcher: search.NewDispatcher(client, store.Dispatch),
	}, nil
}

// parseLocation accepts a full URL or a bare query string.
func parseLocation(raw string) (search.Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return search.Location{Query: filters.Params{}}, nil
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return search.Location{}, fmt.Errorf("parsing URL: %w", err)
		}
		return search.Location{Query: filters.FromValues(u.Query())}, nil
	}

	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return search.Location{}, fmt.Errorf("parsing query string: %w", err)
	}
	return search.Location{Query: filters.FromValues(values)}, nil
}

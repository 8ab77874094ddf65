package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rubiojr/amosearch/pkg/filters"
	"github.com/rubiojr/amosearch/pkg/realtime"
	"github.com/rubiojr/amosearch/pkg/search"
	"github.com/rubiojr/amosearch/pkg/state"
)

type fakeSearcher struct {
	mu    sync.Mutex
	calls []search.Request
	fail  bool
	// release, when set, holds every search until it is closed.
	release chan struct{}
}

func (f *fakeSearcher) Search(ctx context.Context, req search.Request) (*state.Results, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.fail {
		return nil, errors.New("upstream unavailable")
	}
	return &state.Results{
		Count:  1,
		Addons: []state.Addon{{ID: 1, Slug: req.Filters[filters.FilterQuery] + "-addon"}},
	}, nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func setupTestAPIServer(t *testing.T, searcher *fakeSearcher) (*httptest.Server, *state.Store) {
	t.Helper()
	store := state.NewStore(state.New(state.APIState{ClientApp: "firefox"}, false))
	hub := realtime.NewHub(16)
	t.Cleanup(hub.Attach(store))

	srv := NewServer(store, search.NewDispatcher(searcher, store.Dispatch), hub)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHandleSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	ts, store := setupTestAPIServer(t, searcher)

	var props map[string]any
	if code := getJSON(t, ts.URL+"/api/search?q=tabs&app=android", &props); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if props["hasSearchParams"] != true {
		t.Fatalf("expected hasSearchParams, got %v", props)
	}

	if searcher.callCount() != 1 {
		t.Fatalf("expected one search, got %d", searcher.callCount())
	}
	req := searcher.calls[0]
	if req.Filters[filters.FilterClientApp] != "firefox" || req.Filters[filters.FilterQuery] != "tabs" || req.Page != 1 {
		t.Fatalf("unexpected request %+v", req)
	}
	if store.State().Search.Results == nil {
		t.Fatal("store has no results")
	}
}

func TestHandleSearchServesLoadedResults(t *testing.T) {
	searcher := &fakeSearcher{}
	ts, _ := setupTestAPIServer(t, searcher)

	// The location must match the stored filters as query params, so the
	// client app is part of it.
	url := ts.URL + "/api/search?q=tabs&app=firefox"
	getJSON(t, url, nil)

	var props struct {
		HasSearchParams bool            `json:"hasSearchParams"`
		Filters         filters.Filters `json:"filters"`
		Page            int             `json:"page"`
		Loading         bool            `json:"loading"`
		Results         *state.Results  `json:"results"`
	}
	getJSON(t, url, &props)

	if searcher.callCount() != 1 {
		t.Fatalf("expected the second request to be served from the store, got %d searches", searcher.callCount())
	}
	if props.Results == nil || props.Results.Addons[0].Slug != "tabs-addon" {
		t.Fatalf("expected merged results, got %+v", props)
	}
	if props.Page != 1 || props.Loading || props.Filters[filters.FilterQuery] != "tabs" {
		t.Fatalf("unexpected props %+v", props)
	}
}

func TestHandleSearchNoWait(t *testing.T) {
	searcher := &fakeSearcher{release: make(chan struct{})}
	ts, store := setupTestAPIServer(t, searcher)

	var props map[string]any
	getJSON(t, ts.URL+"/api/search?q=tabs&app=firefox&wait=false", &props)
	// wait is not part of the location, so the loading state is merged in.
	if props["loading"] != true {
		t.Fatalf("expected a loading view, got %v", props)
	}
	if _, ok := props["results"]; ok {
		t.Fatalf("unexpected results while loading: %v", props)
	}

	close(searcher.release)
	deadline := time.Now().Add(2 * time.Second)
	for store.State().Search.Results == nil {
		if time.Now().After(deadline) {
			t.Fatal("search never completed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandleSearchNoParams(t *testing.T) {
	ts, _ := setupTestAPIServer(t, &fakeSearcher{})

	var props map[string]any
	getJSON(t, ts.URL+"/api/search", &props)
	if len(props) != 1 || props["hasSearchParams"] != false {
		t.Fatalf("expected only hasSearchParams=false, got %v", props)
	}
}

func TestHandleSearchFailure(t *testing.T) {
	ts, store := setupTestAPIServer(t, &fakeSearcher{fail: true})

	var props map[string]any
	if code := getJSON(t, ts.URL+"/api/search?q=tabs&app=firefox", &props); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if _, ok := props["results"]; ok {
		t.Fatalf("failed search should not carry results: %v", props)
	}
	s := store.State().Search
	if s.Loading || s.Results != nil || s.Filters[filters.FilterQuery] != "tabs" {
		t.Fatalf("unexpected state after failure %+v", s)
	}
}

func TestHandleCategory(t *testing.T) {
	searcher := &fakeSearcher{}
	ts, _ := setupTestAPIServer(t, searcher)

	var resp CategoryResponse
	if code := getJSON(t, ts.URL+"/api/browse/android/extension/privacy?page=2", &resp); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp.Outcome != "loaded" || resp.Search.Page != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	want := filters.Filters{"clientApp": "android", "addonType": "extension", "category": "privacy"}
	if !filters.Match(want, searcher.calls[0].Filters) || len(searcher.calls[0].Filters) != 3 {
		t.Fatalf("expected %v, got %v", want, searcher.calls[0].Filters)
	}

	getJSON(t, ts.URL+"/api/browse/android/extension/privacy?page=2", &resp)
	if resp.Outcome != "cached" || searcher.callCount() != 1 {
		t.Fatalf("expected cached response, got %+v after %d searches", resp, searcher.callCount())
	}
}

func TestHandleStateAndHealth(t *testing.T) {
	ts, _ := setupTestAPIServer(t, &fakeSearcher{})

	var s state.State
	if code := getJSON(t, ts.URL+"/api/state", &s); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if s.API.ClientApp != "firefox" || s.Version != 0 {
		t.Fatalf("unexpected state %+v", s)
	}

	var health HealthResponse
	getJSON(t, ts.URL+"/health", &health)
	if health.Status != "ok" || health.Version == "" {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	ts, _ := setupTestAPIServer(t, &fakeSearcher{})

	for _, path := range []string{"/api/nope", "/api/browse/android/extension"} {
		var errResp ErrorResponse
		if code := getJSON(t, ts.URL+path, &errResp); code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, code)
		}
		if errResp.Error != "not_found" || errResp.Message == "" {
			t.Fatalf("%s: unexpected error response %+v", path, errResp)
		}
	}
}

func TestCorsPreflight(t *testing.T) {
	ts, _ := setupTestAPIServer(t, &fakeSearcher{})

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/search", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected preflight response %d %v", resp.StatusCode, resp.Header)
	}
}

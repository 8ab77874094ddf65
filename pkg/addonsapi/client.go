// Package addonsapi is a client for the add-ons search endpoint.
package addonsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/rubiojr/amosearch/pkg/filters"
	"github.com/rubiojr/amosearch/pkg/log"
	"github.com/rubiojr/amosearch/pkg/search"
	"github.com/rubiojr/amosearch/pkg/state"
	"github.com/rubiojr/amosearch/pkg/version"
	"golang.org/x/oauth2"
)

var logger = log.ForService("addonsapi")

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// SearchPath is appended to the base URL.
const SearchPath = "addons/search/"

// ErrNoToken is returned for authenticated searches when no token is configured.
var ErrNoToken = errors.New("authenticated search requested but no token configured")

// StatusError reports a non-200 response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("add-ons API returned status %d for %s", e.StatusCode, e.URL)
}

// Config configures a Client.
type Config struct {
	// BaseURL of the API, e.g. https://addons.mozilla.org/api/v5/
	BaseURL string
	// Token is sent as a bearer token on authenticated searches.
	Token   string
	Timeout time.Duration
}

// Client implements search.Searcher.
type Client struct {
	baseURL *url.URL
	anon    *http.Client
	authed  *http.Client
}

var _ search.Searcher = (*Client)(nil)

// New validates cfg and builds a client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing API URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("API URL %q must be http or https", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: base,
		anon:    &http.Client{Timeout: timeout},
	}
	if cfg.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		c.authed = &http.Client{
			Timeout:   timeout,
			Transport: &oauth2.Transport{Source: src, Base: http.DefaultTransport},
		}
	}
	return c, nil
}

// searchQuery is the wire form of a search request.
type searchQuery struct {
	Page      int    `url:"page,omitempty"`
	Query     string `url:"q,omitempty"`
	App       string `url:"app,omitempty"`
	AddonType string `url:"type,omitempty"`
	Category  string `url:"category,omitempty"`
	Lang      string `url:"lang,omitempty"`
}

type searchResponse struct {
	Count    int        `json:"count"`
	Next     string     `json:"next"`
	Previous string     `json:"previous"`
	Results  []apiAddon `json:"results"`
}

type apiAddon struct {
	ID                int    `json:"id"`
	GUID              string `json:"guid"`
	Slug              string `json:"slug"`
	Name              string `json:"name"`
	Summary           string `json:"summary"`
	Type              string `json:"type"`
	URL               string `json:"url"`
	AverageDailyUsers int    `json:"average_daily_users"`
	Ratings           struct {
		Average float64 `json:"average"`
	} `json:"ratings"`
}

// URLFor returns the search URL for req.
func (c *Client) URLFor(req search.Request) (string, error) {
	v, err := query.Values(searchQuery{
		Page:      req.Page,
		Query:     req.Filters[filters.FilterQuery],
		App:       req.Filters[filters.FilterClientApp],
		AddonType: req.Filters[filters.FilterAddonType],
		Category:  req.Filters[filters.FilterCategory],
		Lang:      req.API.Lang,
	})
	if err != nil {
		return "", fmt.Errorf("encoding search query: %w", err)
	}
	u := c.baseURL.ResolveReference(&url.URL{Path: SearchPath})
	u.RawQuery = v.Encode()
	return u.String(), nil
}

// Search runs one search request.
func (c *Client) Search(ctx context.Context, req search.Request) (*state.Results, error) {
	hc := c.anon
	if req.AuthRequired {
		if c.authed == nil {
			return nil, ErrNoToken
		}
		hc = c.authed
	}

	target, err := c.URLFor(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.New().String()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "amosearch/"+version.Version)
	httpReq.Header.Set("X-Request-Id", requestID)

	logger.Debugf("GET %s (request %s)", target, requestID)
	resp, err := hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warnf("failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return sr.toResults(), nil
}

func (sr searchResponse) toResults() *state.Results {
	out := &state.Results{
		Count:    sr.Count,
		Next:     sr.Next,
		Previous: sr.Previous,
		Addons:   make([]state.Addon, len(sr.Results)),
	}
	for i, a := range sr.Results {
		out.Addons[i] = state.Addon{
			ID:            a.ID,
			GUID:          a.GUID,
			Slug:          a.Slug,
			Name:          a.Name,
			Summary:       a.Summary,
			Type:          a.Type,
			URL:           a.URL,
			AverageRating: a.Ratings.Average,
			Users:         a.AverageDailyUsers,
		}
	}
	return out
}

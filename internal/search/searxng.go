package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SearxNG queries a SearXNG instance's JSON API.
type SearxNG struct {
	baseURL string
	client  *http.Client
	engines string
	maxHits int
}

// SearxNGOption configures a SearxNG backend.
type SearxNGOption func(*SearxNG)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(c *http.Client) SearxNGOption {
	return func(s *SearxNG) { s.client = c }
}

// WithEngines overrides the engine list passed to SearXNG.
func WithEngines(engines string) SearxNGOption {
	return func(s *SearxNG) { s.engines = engines }
}

// WithMaxHits caps results returned per query.
func WithMaxHits(n int) SearxNGOption {
	return func(s *SearxNG) {
		if n > 0 {
			s.maxHits = n
		}
	}
}

// NewSearxNG creates a SearXNG backend against the given instance URL.
func NewSearxNG(baseURL string, opts ...SearxNGOption) *SearxNG {
	s := &SearxNG{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		engines: "google,bing,duckduckgo",
		maxHits: 15,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// searxResponse mirrors the SearXNG JSON payload.
type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements Backend.
func (s *SearxNG) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("engines", s.engines)
	params.Set("safesearch", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searxng request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, fmt.Errorf("searxng returned HTTP %d", resp.StatusCode)
	}

	var payload searxResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode searxng response: %w", err)
	}

	results := make([]Result, 0, len(payload.Results))
	for _, item := range payload.Results {
		if item.URL == "" {
			continue
		}
		results = append(results, Result{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.URL,
			Snippet: strings.TrimSpace(item.Content),
		})
		if len(results) >= s.maxHits {
			break
		}
	}
	return results, nil
}

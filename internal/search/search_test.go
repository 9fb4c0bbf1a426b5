package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/claritydesk/claritydesk/internal/types"
)

// fakeBackend returns canned results per query and can fail on demand.
type fakeBackend struct {
	mu      sync.Mutex
	results map[string][]Result
	fail    map[string]bool
	calls   int
}

func (f *fakeBackend) Search(_ context.Context, query string) ([]Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail[query] {
		return nil, fmt.Errorf("backend down")
	}
	return f.results[query], nil
}

func subQueries(texts ...string) []types.SubQuery {
	out := make([]types.SubQuery, 0, len(texts))
	for _, t := range texts {
		out = append(out, types.SubQuery{Text: t, Strategy: types.StrategyOriginal})
	}
	return out
}

func TestRetrieve_DeduplicatesAcrossSubQueries(t *testing.T) {
	backend := &fakeBackend{
		results: map[string][]Result{
			"a": {
				{Title: "Page", URL: "https://www.example.com/page/", Snippet: "s1"},
			},
			"b": {
				{Title: "Page again", URL: "https://example.com/page?utm_source=x", Snippet: "s2"},
				{Title: "Other", URL: "https://other.com/doc", Snippet: "s3"},
			},
		},
	}
	r := NewRetriever(backend, 2, zap.NewNop())

	links, failures, err := r.Retrieve(context.Background(), subQueries("a", "b"), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, failures)
	require.Len(t, links, 2)

	urls := []string{links[0].URL, links[1].URL}
	assert.Contains(t, urls, "https://example.com/page")
	assert.Contains(t, urls, "https://other.com/doc")
}

func TestRetrieve_SoftFailureCounted(t *testing.T) {
	backend := &fakeBackend{
		results: map[string][]Result{
			"good": {{Title: "Doc", URL: "https://example.com/doc"}},
		},
		fail: map[string]bool{"bad": true},
	}
	r := NewRetriever(backend, 2, zap.NewNop())

	links, failures, err := r.Retrieve(context.Background(), subQueries("good", "bad"), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, failures)
	assert.Len(t, links, 1)
}

func TestRetrieve_RetrievalOrderAssigned(t *testing.T) {
	backend := &fakeBackend{
		results: map[string][]Result{
			"q": {
				{Title: "One", URL: "https://a.com/1"},
				{Title: "Two", URL: "https://b.com/2"},
				{Title: "Three", URL: "https://c.com/3"},
			},
		},
	}
	r := NewRetriever(backend, 1, zap.NewNop())

	links, _, err := r.Retrieve(context.Background(), subQueries("q"), 10)
	require.NoError(t, err)
	require.Len(t, links, 3)
	for i, link := range links {
		assert.Equal(t, i, link.RetrievalOrder)
	}
}

func TestRetrieve_CapsCandidates(t *testing.T) {
	var results []Result
	for i := 0; i < 20; i++ {
		results = append(results, Result{
			Title: fmt.Sprintf("Doc %d", i),
			URL:   fmt.Sprintf("https://site%d.com/doc", i),
		})
	}
	backend := &fakeBackend{results: map[string][]Result{"q": results}}
	r := NewRetriever(backend, 1, zap.NewNop())

	links, _, err := r.Retrieve(context.Background(), subQueries("q"), 5)
	require.NoError(t, err)
	assert.Len(t, links, 5)
}

func TestRetrieve_DiversityCap(t *testing.T) {
	backend := &fakeBackend{
		results: map[string][]Result{
			"q": {
				{Title: "B1", URL: "https://blog.com/1"},
				{Title: "B2", URL: "https://blog.com/2"},
				{Title: "B3", URL: "https://blog.com/3"},
				{Title: "G1", URL: "https://cdc.gov/1"},
				{Title: "G2", URL: "https://cdc.gov/2"},
				{Title: "G3", URL: "https://cdc.gov/3"},
				{Title: "G4", URL: "https://cdc.gov/4"},
			},
		},
	}
	r := NewRetriever(backend, 1, zap.NewNop())

	links, _, err := r.Retrieve(context.Background(), subQueries("q"), 0)
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, link := range links {
		counts[link.Domain]++
	}
	assert.Equal(t, 3, counts["cdc.gov"], "authority domains capped at 3")
	assert.Equal(t, 2, counts["blog.com"], "other domains capped at 2")
}

func TestRetrieve_NoSubQueries(t *testing.T) {
	r := NewRetriever(&fakeBackend{}, 1, zap.NewNop())
	_, _, err := r.Retrieve(context.Background(), nil, 10)
	assert.Error(t, err)
}

func TestSearxNG_ParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results": [
			{"title": "Go docs", "url": "https://go.dev/doc", "content": "The Go documentation"},
			{"title": "", "url": "", "content": "missing url is skipped"},
			{"title": "Blog", "url": "https://blog.golang.org/post", "content": "A post"}
		]}`)
	}))
	defer srv.Close()

	s := NewSearxNG(srv.URL)
	results, err := s.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Go docs", results[0].Title)
	assert.Equal(t, "https://go.dev/doc", results[0].URL)
}

func TestSearxNG_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewSearxNG(srv.URL)
	_, err := s.Search(context.Background(), "golang")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSearxNG_MaxHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results": [`)
		for i := 0; i < 10; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"title": "T%d", "url": "https://s%d.com/x", "content": "c"}`, i, i)
		}
		fmt.Fprint(w, `]}`)
	}))
	defer srv.Close()

	s := NewSearxNG(srv.URL, WithMaxHits(4))
	results, err := s.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, results, 4)
}

func newTestGoogle(t *testing.T, srvURL string) *Google {
	t.Helper()
	svc, err := customsearch.NewService(context.Background(),
		option.WithAPIKey("test-key"),
		option.WithEndpoint(srvURL))
	require.NoError(t, err)
	return &Google{svc: svc, cx: "test-cx"}
}

func TestGoogle_ParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-cx", r.URL.Query().Get("cx"))
		assert.Equal(t, "golang concurrency", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items": [
			{"title": "Go Concurrency Patterns", "link": "https://go.dev/blog/pipelines", "snippet": "Pipelines and cancellation."},
			{"title": "No link item", "link": "", "snippet": "dropped"},
			{"title": "Effective Go", "link": "https://go.dev/doc/effective_go", "snippet": "Concurrency section."}
		]}`)
	}))
	defer srv.Close()

	g := newTestGoogle(t, srv.URL)
	results, err := g.Search(context.Background(), "golang concurrency")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Go Concurrency Patterns", results[0].Title)
	assert.Equal(t, "https://go.dev/blog/pipelines", results[0].URL)
	assert.Equal(t, "Concurrency section.", results[1].Snippet)
}

func TestGoogle_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := newTestGoogle(t, srv.URL)
	_, err := g.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google search failed")
}

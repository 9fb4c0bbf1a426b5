// Package search provides search backends and the retrieval stage that
// fans sub-queries out to them and merges deduplicated candidates.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/claritydesk/claritydesk/internal/types"
)

// Result is one raw hit from a search backend.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Backend is the search aggregation collaborator. Implementations may
// fail or time out per call; the Retriever absorbs those failures.
type Backend interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// perQueryTimeout bounds a single backend call so one slow sub-query
// cannot consume the whole search budget.
const perQueryTimeout = 15 * time.Second

// Retriever fans sub-queries out to a Backend and merges the results.
type Retriever struct {
	backend     Backend
	concurrency int
	logger      *zap.Logger
}

// NewRetriever creates a Retriever with a bounded fan-out width.
func NewRetriever(backend Backend, concurrency int, logger *zap.Logger) *Retriever {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{backend: backend, concurrency: concurrency, logger: logger}
}

// Retrieve runs every sub-query against the backend and returns merged,
// deduplicated candidates capped at maxCandidates. A failing sub-query is
// logged and skipped; failures is the number of sub-queries that returned
// no results due to backend errors. Retrieve only errors when the context
// is done before any work could complete.
func (r *Retriever) Retrieve(ctx context.Context, subQueries []types.SubQuery, maxCandidates int) ([]types.CandidateLink, int, error) {
	if len(subQueries) == 0 {
		return nil, 0, fmt.Errorf("no sub-queries to retrieve")
	}

	// Independent result slots per sub-query; merged only after all
	// settle, so no shared collection needs locking.
	slots := make([][]Result, len(subQueries))
	failed := make([]bool, len(subQueries))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, sq := range subQueries {
		g.Go(func() error {
			qCtx, cancel := context.WithTimeout(gCtx, perQueryTimeout)
			defer cancel()

			results, err := r.backend.Search(qCtx, sq.Text)
			if err != nil {
				// Soft failure: continue with partial results from the
				// other sub-queries.
				r.logger.Warn("sub-query search failed",
					zap.String("sub_query", sq.Text), zap.Error(err))
				failed[i] = true
				return nil
			}
			slots[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if ctx.Err() != nil {
		return nil, 0, ctx.Err()
	}

	failures := 0
	for _, f := range failed {
		if f {
			failures++
		}
	}

	merged := r.merge(subQueries, slots, maxCandidates)
	r.logger.Info("retrieval complete",
		zap.Int("sub_queries", len(subQueries)),
		zap.Int("failed_sub_queries", failures),
		zap.Int("candidates", len(merged)))

	return merged, failures, nil
}

// merge deduplicates by normalized URL, applies per-domain diversity caps
// and truncates to maxCandidates. Slot order (not arrival order) drives
// the merge, so output is deterministic.
func (r *Retriever) merge(subQueries []types.SubQuery, slots [][]Result, maxCandidates int) []types.CandidateLink {
	seen := make(map[string]bool)
	var links []types.CandidateLink

	for i, results := range slots {
		for _, res := range results {
			norm := NormalizeURL(res.URL)
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			links = append(links, types.CandidateLink{
				URL:      norm,
				Title:    res.Title,
				Snippet:  res.Snippet,
				Domain:   DomainOf(norm),
				SubQuery: subQueries[i].Text,
			})
		}
	}

	links = diversityCap(links)

	if maxCandidates > 0 && len(links) > maxCandidates {
		links = links[:maxCandidates]
	}
	for i := range links {
		links[i].RetrievalOrder = i
	}
	return links
}

// diversityCap limits candidates per domain: 3 for authority domains,
// 2 otherwise. Authority domains are considered first.
func diversityCap(links []types.CandidateLink) []types.CandidateLink {
	sort.SliceStable(links, func(i, j int) bool {
		return authorityTier(links[i].Domain) < authorityTier(links[j].Domain)
	})

	counts := make(map[string]int)
	kept := links[:0]
	for _, link := range links {
		limit := 2
		if authorityTier(link.Domain) == 0 {
			limit = 3
		}
		if counts[link.Domain] >= limit {
			continue
		}
		counts[link.Domain]++
		kept = append(kept, link)
	}
	return kept
}

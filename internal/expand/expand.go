// Package expand turns one research query into a bounded set of
// search-ready sub-queries.
package expand

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/claritydesk/claritydesk/internal/types"
)

// Bounds on sub-query count per depth level.
const (
	maxQuick    = 1
	maxStandard = 5
	maxDeep     = 10
)

// Expander derives sub-queries from a research query. Strategies run
// independently; a failing strategy never blocks the others.
type Expander struct {
	logger *zap.Logger
}

// New creates an Expander.
func New(logger *zap.Logger) *Expander {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Expander{logger: logger}
}

// strategyFunc produces expansion variants for one strategy.
type strategyFunc func(query string, qt types.QueryType) []types.SubQuery

// Expand returns sub-queries for the given depth. The original query is
// always the first element, so retrieval never receives zero queries.
func (e *Expander) Expand(ctx context.Context, query string, depth types.Depth) []types.SubQuery {
	base := strings.TrimSpace(query)
	out := []types.SubQuery{{Text: base, Strategy: types.StrategyOriginal}}

	limit := maxStandard
	switch depth {
	case types.DepthQuick:
		return out
	case types.DepthDeep:
		limit = maxDeep
	}

	qt := ClassifyQuery(base)

	strategies := []strategyFunc{temporalVariants, domainVariants, contextVariants}
	results := make([][]types.SubQuery, len(strategies))

	var wg sync.WaitGroup
	for i, fn := range strategies {
		wg.Add(1)
		go func(i int, fn strategyFunc) {
			defer wg.Done()
			defer func() {
				// A misbehaving strategy must not take down expansion;
				// the original query fallback still applies.
				if r := recover(); r != nil {
					e.logger.Warn("expansion strategy panicked", zap.Any("panic", r))
				}
			}()
			if ctx.Err() != nil {
				return
			}
			results[i] = fn(base, qt)
		}(i, fn)
	}
	wg.Wait()

	seen := map[string]bool{strings.ToLower(base): true}
	for _, variants := range results {
		for _, sq := range variants {
			key := strings.ToLower(strings.TrimSpace(sq.Text))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, sq)
			if len(out) >= limit {
				e.logger.Debug("query expansion complete",
					zap.Int("sub_queries", len(out)), zap.String("depth", string(depth)))
				return out
			}
		}
	}

	e.logger.Debug("query expansion complete",
		zap.Int("sub_queries", len(out)), zap.String("depth", string(depth)))
	return out
}

// temporalVariants biases retrieval toward recent material.
func temporalVariants(query string, _ types.QueryType) []types.SubQuery {
	year := time.Now().Year()
	return []types.SubQuery{
		{Text: fmt.Sprintf("%s %d", query, year), Strategy: types.StrategyTemporal},
		{Text: query + " latest", Strategy: types.StrategyTemporal},
	}
}

// domainVariants biases retrieval toward authoritative domains.
func domainVariants(query string, _ types.QueryType) []types.SubQuery {
	return []types.SubQuery{
		{Text: "site:gov " + query, Strategy: types.StrategyDomain},
		{Text: "site:edu " + query, Strategy: types.StrategyDomain},
	}
}

// contextVariants widens or narrows the query depending on its type.
func contextVariants(query string, qt types.QueryType) []types.SubQuery {
	var texts []string
	switch qt {
	case types.QueryList:
		texts = []string{"best " + query, query + " examples"}
	case types.QueryComparison:
		texts = []string{query + " comparison", query + " pros and cons"}
	case types.QueryHowTo:
		texts = []string{query + " guide", query + " step by step"}
	case types.QueryAnalysis:
		texts = []string{query + " analysis", query + " trends"}
	default:
		texts = []string{query + " overview", "what is " + query}
	}
	out := make([]types.SubQuery, 0, len(texts))
	for _, t := range texts {
		out = append(out, types.SubQuery{Text: t, Strategy: types.StrategyContext})
	}
	return out
}

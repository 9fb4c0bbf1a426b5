package rank

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/claritydesk/claritydesk/internal/llm"
	"github.com/claritydesk/claritydesk/internal/prompts"
	"github.com/claritydesk/claritydesk/internal/types"
)

// rerankSnippet is how much of each document body the rerank prompt
// sees. Full bodies would blow the context window for no gain.
const rerankSnippet = 400

// truncSnippet cuts a body to rerankSnippet bytes without splitting a
// UTF-8 rune.
func truncSnippet(body string) string {
	if len(body) <= rerankSnippet {
		return body
	}
	cut := rerankSnippet
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}

// Rerank asks the LLM to reorder the heuristic ranking. It is strictly
// best effort: on any failure, malformed output, or hallucinated
// indices the heuristic order is returned untouched.
func (r *Ranker) Rerank(ctx context.Context, client llm.Client, query string, scored []types.ScoredDocument) []types.ScoredDocument {
	if client == nil || len(scored) < 2 {
		return scored
	}

	var sb strings.Builder
	for i, doc := range scored {
		fmt.Fprintf(&sb, "[%d] %s (%s)\n%s\n\n", i+1, doc.ExtractedTitle, doc.Domain, truncSnippet(doc.Body))
	}

	prompt := prompts.Format(prompts.MustGet("research.json", "rerank-documents"), map[string]string{
		"Query":     query,
		"Documents": sb.String(),
	})

	out, err := client.Complete(ctx, llm.TaskRerank, prompt)
	if err != nil {
		r.logger.Warn("LLM rerank failed, keeping heuristic order", zap.Error(err))
		return scored
	}

	order, ok := parseRankOrder(out, len(scored))
	if !ok {
		r.logger.Warn("unparseable rerank output, keeping heuristic order",
			zap.String("output", strings.TrimSpace(out)))
		return scored
	}

	reranked := make([]types.ScoredDocument, 0, len(scored))
	for _, idx := range order {
		reranked = append(reranked, scored[idx-1])
	}
	return reranked
}

// parseRankOrder parses "3, 1, 2" style output into a permutation of
// 1..n. Anything else fails the parse.
func parseRankOrder(out string, n int) ([]int, bool) {
	out = strings.TrimSpace(out)
	if idx := strings.IndexAny(out, "\n"); idx >= 0 {
		out = out[:idx]
	}
	parts := strings.Split(out, ",")
	if len(parts) != n {
		return nil, false
	}
	seen := make(map[int]bool, n)
	order := make([]int, 0, n)
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(strings.Trim(strings.TrimSpace(p), "[].")))
		if err != nil || v < 1 || v > n || seen[v] {
			return nil, false
		}
		seen[v] = true
		order = append(order, v)
	}
	return order, true
}

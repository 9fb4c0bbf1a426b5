// Package rank orders extracted documents by relevance and quality and
// selects the subset handed to synthesis.
package rank

import (
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/claritydesk/claritydesk/internal/types"
)

// Quality score weights. Domain authority dominates because it is the
// most stable signal across queries.
const (
	weightDomain  = 0.5
	weightRecency = 0.3
	weightLength  = 0.2
)

// diversityBase is the per-extra-document penalty applied once a domain
// already holds two slots in the ranking.
const diversityBase = 0.9

// maxKeyFindings bounds the extractive summary per source.
const maxKeyFindings = 3

// Ranker scores and orders documents deterministically.
type Ranker struct {
	logger *zap.Logger
	now    func() time.Time
}

// New builds a Ranker.
func New(logger *zap.Logger) *Ranker {
	return &Ranker{logger: logger, now: time.Now}
}

// Rank scores every document against the query, applies the domain
// diversity penalty, and returns the top maxSources documents. Order is
// a total order: ties on combined score fall back to quality, then
// fetch latency, then retrieval order, so equal inputs always produce
// equal output.
func (r *Ranker) Rank(query string, docs []types.Document, maxSources int) []types.ScoredDocument {
	if len(docs) == 0 {
		return nil
	}

	terms := queryTerms(query)
	now := r.now()

	scored := make([]types.ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		sd := types.ScoredDocument{
			Document:       doc,
			RelevanceScore: relevanceScore(terms, doc.ExtractedTitle, doc.Body),
			QualityScore: weightDomain*domainScore(doc.Domain) +
				weightRecency*recencyScore(doc.PublishedGuess, now) +
				weightLength*lengthScore(doc.ContentLength),
		}
		sd.KeyFindings = keyFindings(terms, doc.Body)
		scored = append(scored, sd)
	}

	sortScored(scored)
	applyDiversityPenalty(scored)
	sortScored(scored)

	if maxSources > 0 && len(scored) > maxSources {
		scored = scored[:maxSources]
	}
	return scored
}

// sortScored establishes the deterministic total order.
func sortScored(scored []types.ScoredDocument) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.CombinedScore() != b.CombinedScore() {
			return a.CombinedScore() > b.CombinedScore()
		}
		if a.QualityScore != b.QualityScore {
			return a.QualityScore > b.QualityScore
		}
		if a.FetchLatency != b.FetchLatency {
			return a.FetchLatency < b.FetchLatency
		}
		return a.RetrievalOrder < b.RetrievalOrder
	})
}

// applyDiversityPenalty discounts the third and later documents from
// the same domain so one publisher cannot crowd out the source list.
// Input must already be sorted; penalties only ever push documents
// down, never up past an unpenalized peer.
func applyDiversityPenalty(scored []types.ScoredDocument) {
	counts := make(map[string]int, len(scored))
	for i := range scored {
		counts[scored[i].Domain]++
		if n := counts[scored[i].Domain]; n > 2 {
			penalty := math.Pow(diversityBase, float64(n-2))
			scored[i].RelevanceScore *= penalty
			scored[i].QualityScore *= penalty
		}
	}
}

// keyFindings extracts the sentences with the highest query-term
// overlap, keeping document order so the excerpt reads naturally.
func keyFindings(terms []string, body string) string {
	sentences := splitSentences(body)
	if len(sentences) == 0 {
		return ""
	}

	type ranked struct {
		index int
		score int
	}
	var candidates []ranked
	for i, s := range sentences {
		lower := strings.ToLower(s)
		score := 0
		for _, t := range terms {
			if strings.Contains(lower, t) {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, ranked{index: i, score: score})
		}
	}
	if len(candidates) == 0 {
		// No term overlap anywhere, fall back to the opening sentences.
		n := maxKeyFindings
		if len(sentences) < n {
			n = len(sentences)
		}
		return strings.Join(sentences[:n], " ")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxKeyFindings {
		candidates = candidates[:maxKeyFindings]
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].index < candidates[j].index
	})

	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, sentences[c.index])
	}
	return strings.Join(parts, " ")
}

// splitSentences is a rough sentence splitter good enough for scoring.
func splitSentences(text string) []string {
	var sentences []string
	var sb strings.Builder
	for _, r := range text {
		sb.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(sb.String())
			if len(s) > 20 && len(s) < 500 {
				sentences = append(sentences, s)
			}
			sb.Reset()
		}
	}
	return sentences
}

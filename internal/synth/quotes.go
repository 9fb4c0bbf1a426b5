package synth

import (
	"sort"
	"strings"
)

// maxPullQuotes bounds the quotes surfaced per source.
const maxPullQuotes = 2

// quoteIndicators are phrases that mark a sentence as a concrete,
// quotable statement rather than filler.
var quoteIndicators = []string{
	"according to", "research shows", "study found", "data shows",
	"found that", "reported that", "announced", "percent", "%",
	"estimated", "survey", "concluded",
}

// PullQuotes extracts the most quotable sentences from a source body,
// favoring sentences that mention query terms and carry concrete
// indicators like figures or attributions.
func PullQuotes(query, body string) []string {
	sentences := splitClaims(body)
	if len(sentences) == 0 {
		return nil
	}
	queryWords := significantWords(query)

	type scored struct {
		index int
		score int
	}
	var candidates []scored
	for i, s := range sentences {
		if len(s) < 40 || len(s) > 300 {
			continue
		}
		lower := strings.ToLower(s)
		score := 0
		for w := range queryWords {
			if strings.Contains(lower, w) {
				score += 2
			}
		}
		for _, ind := range quoteIndicators {
			if strings.Contains(lower, ind) {
				score++
			}
		}
		if strings.ContainsAny(s, "0123456789") {
			score++
		}
		if score >= 3 {
			candidates = append(candidates, scored{index: i, score: score})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxPullQuotes {
		candidates = candidates[:maxPullQuotes]
	}

	quotes := make([]string, 0, len(candidates))
	for _, c := range candidates {
		quotes = append(quotes, sentences[c.index])
	}
	return quotes
}

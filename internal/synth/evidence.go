package synth

import (
	"strings"

	"github.com/claritydesk/claritydesk/internal/types"
)

// minQuoteOverlap is the minimum number of shared significant words
// between a claim and a source sentence for it to count as support.
const minQuoteOverlap = 2

// BuildEvidenceMatrix maps each cited sentence of the answer to the
// source it cites and a supporting quote pulled from that source.
// Sentences without citations do not appear in the matrix.
func BuildEvidenceMatrix(answer string, sources []types.ScoredDocument) []types.EvidenceClaim {
	var matrix []types.EvidenceClaim
	for _, sentence := range splitClaims(answer) {
		ids := Citations(sentence)
		if len(ids) == 0 {
			continue
		}
		claim := citationPattern.ReplaceAllString(sentence, "")
		claim = strings.Join(strings.Fields(claim), " ")
		for _, id := range ids {
			if id < 1 || id > len(sources) {
				continue
			}
			src := sources[id-1]
			quote, overlap := bestSupportingQuote(claim, src.Body)
			matrix = append(matrix, types.EvidenceClaim{
				Claim:           claim,
				SupportingQuote: quote,
				SourceID:        id,
				Confidence:      claimConfidence(src, overlap),
			})
		}
	}
	return matrix
}

// bestSupportingQuote finds the source sentence with the highest
// significant-word overlap with the claim. Returns the empty string
// when nothing clears minQuoteOverlap.
func bestSupportingQuote(claim, body string) (string, int) {
	claimWords := significantWords(claim)
	if len(claimWords) == 0 {
		return "", 0
	}

	var best string
	bestOverlap := 0
	for _, sentence := range splitClaims(body) {
		overlap := 0
		lower := strings.ToLower(sentence)
		for w := range claimWords {
			if strings.Contains(lower, w) {
				overlap++
			}
		}
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = sentence
		}
	}
	if bestOverlap < minQuoteOverlap {
		return "", bestOverlap
	}
	return best, bestOverlap
}

// claimConfidence grades support by source quality and quote overlap.
func claimConfidence(src types.ScoredDocument, overlap int) string {
	switch {
	case overlap >= 4 && src.QualityScore >= 0.7:
		return "high"
	case overlap >= minQuoteOverlap:
		return "medium"
	default:
		return "low"
	}
}

// significantWords returns the lowercase words of length > 3 in text.
func significantWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if len(w) > 3 {
			words[w] = true
		}
	}
	return words
}

// splitClaims splits text into sentences long enough to carry a claim.
func splitClaims(text string) []string {
	var sentences []string
	var sb strings.Builder
	for _, r := range text {
		sb.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(sb.String())
			if len(s) > 15 {
				sentences = append(sentences, s)
			}
			sb.Reset()
		}
	}
	if s := strings.TrimSpace(sb.String()); len(s) > 15 {
		sentences = append(sentences, s)
	}
	return sentences
}

package rank

import (
	"strings"
	"time"
)

// titleBoost weights query terms found in the title over terms found in
// the body.
const titleBoost = 3.0

// knownDomains lists specific high-authority publishers checked before
// the TLD fallbacks. Order matters: first match wins.
var knownDomains = []struct {
	domain string
	score  float64
}{
	{"nature.com", 0.9},
	{"sciencemag.org", 0.9},
	{"reuters.com", 0.8},
	{"apnews.com", 0.8},
	{"bbc.com", 0.8},
	{"bbc.co.uk", 0.8},
	{"wikipedia.org", 0.75},
	{"arxiv.org", 0.75},
}

// tldScores maps authority TLDs to a quality prior.
var tldScores = []struct {
	suffix string
	score  float64
}{
	{".gov", 1.0},
	{".mil", 1.0},
	{".edu", 0.95},
	{".org", 0.85},
}

const defaultDomainScore = 0.6

// domainScore returns the authority prior for a domain.
func domainScore(domain string) float64 {
	domain = strings.ToLower(domain)
	for _, known := range knownDomains {
		if domain == known.domain || strings.HasSuffix(domain, "."+known.domain) {
			return known.score
		}
	}
	for _, tld := range tldScores {
		if strings.HasSuffix(domain, tld.suffix) {
			return tld.score
		}
	}
	return defaultDomainScore
}

// relevanceScore measures query-term overlap against the document title
// and body. It is a coarse BM25-style signal: term frequency matters
// but saturates quickly, and title hits count extra.
func relevanceScore(queryTerms []string, title, body string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	titleLower := strings.ToLower(title)
	bodyLower := strings.ToLower(body)

	var score float64
	for _, term := range queryTerms {
		var s float64
		if strings.Contains(titleLower, term) {
			s += titleBoost
		}
		n := strings.Count(bodyLower, term)
		if n > 5 {
			n = 5
		}
		s += float64(n) / 5.0
		score += s
	}
	max := float64(len(queryTerms)) * (titleBoost + 1.0)
	return score / max
}

// recencyScore buckets a YYYY-MM publish guess into a freshness score.
// Unknown dates score neutrally rather than being punished.
func recencyScore(publishedGuess string, now time.Time) float64 {
	if publishedGuess == "" {
		return 0.5
	}
	t, err := time.Parse("2006-01", publishedGuess)
	if err != nil {
		if t, err = time.Parse("2006-01-02", publishedGuess); err != nil {
			return 0.5
		}
	}
	age := now.Sub(t)
	switch {
	case age < 0:
		return 0.5
	case age < 90*24*time.Hour:
		return 1.0
	case age < 365*24*time.Hour:
		return 0.8
	case age < 3*365*24*time.Hour:
		return 0.6
	default:
		return 0.3
	}
}

// lengthScore favors substantive articles over stubs and walls of text.
func lengthScore(contentLength int) float64 {
	switch {
	case contentLength < 300:
		return 0.2
	case contentLength < 1000:
		return 0.6
	case contentLength < 10000:
		return 1.0
	case contentLength < 50000:
		return 0.8
	default:
		return 0.5
	}
}

// queryTerms tokenizes a query into lowercase terms longer than two
// characters.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()[]")
		if len(f) > 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

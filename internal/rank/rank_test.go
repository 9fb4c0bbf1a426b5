package rank

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/claritydesk/claritydesk/internal/types"
)

func doc(url, domain, title, body string, order int) types.Document {
	return types.Document{
		CandidateLink: types.CandidateLink{
			URL:            url,
			Domain:         domain,
			RetrievalOrder: order,
		},
		ExtractedTitle: title,
		Body:           body,
		ContentLength:  len(body),
	}
}

func TestRank_Deterministic(t *testing.T) {
	r := New(zap.NewNop())
	docs := []types.Document{
		doc("https://a.com/1", "a.com", "Solar power basics", strings.Repeat("solar energy panels cost. ", 50), 0),
		doc("https://b.gov/2", "b.gov", "Solar report", strings.Repeat("solar capacity grid data. ", 50), 1),
		doc("https://c.com/3", "c.com", "Unrelated cooking blog", strings.Repeat("recipes pasta sauce dinner. ", 50), 2),
	}

	first := r.Rank("solar energy", docs, 10)
	second := r.Rank("solar energy", docs, 10)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].URL, second[i].URL)
		assert.Equal(t, first[i].RelevanceScore, second[i].RelevanceScore)
	}
}

func TestRank_RelevantBeatsIrrelevant(t *testing.T) {
	r := New(zap.NewNop())
	docs := []types.Document{
		doc("https://c.com/3", "c.com", "Cooking blog", strings.Repeat("recipes pasta sauce. ", 50), 0),
		doc("https://a.com/1", "a.com", "Solar energy guide", strings.Repeat("solar energy panel efficiency. ", 50), 1),
	}

	ranked := r.Rank("solar energy efficiency", docs, 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, "https://a.com/1", ranked[0].URL)
}

func TestRank_TieBreakByRetrievalOrder(t *testing.T) {
	r := New(zap.NewNop())
	body := strings.Repeat("identical content about databases. ", 40)
	docs := []types.Document{
		doc("https://b.com/2", "b.com", "Databases", body, 1),
		doc("https://a.com/1", "a.com", "Databases", body, 0),
	}

	ranked := r.Rank("databases", docs, 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, "https://a.com/1", ranked[0].URL, "equal scores fall back to retrieval order")
}

func TestRank_CapsAtMaxSources(t *testing.T) {
	r := New(zap.NewNop())
	var docs []types.Document
	body := strings.Repeat("topic content sentence. ", 40)
	for i := 0; i < 10; i++ {
		docs = append(docs, doc("https://site.com/"+string(rune('a'+i)), "site.com", "Topic", body, i))
	}

	ranked := r.Rank("topic", docs, 4)
	assert.Len(t, ranked, 4)
}

func TestRank_DiversityPenalty(t *testing.T) {
	r := New(zap.NewNop())
	body := strings.Repeat("solar energy data points. ", 40)
	docs := []types.Document{
		doc("https://big.com/1", "big.com", "Solar energy one", body, 0),
		doc("https://big.com/2", "big.com", "Solar energy two", body, 1),
		doc("https://big.com/3", "big.com", "Solar energy three", body, 2),
		doc("https://other.com/1", "other.com", "Solar energy other", body, 3),
	}

	ranked := r.Rank("solar energy", docs, 10)
	require.Len(t, ranked, 4)

	// The third big.com document is penalized, so the single other.com
	// document must outrank at least one big.com entry.
	var otherPos int
	for i, d := range ranked {
		if d.Domain == "other.com" {
			otherPos = i
		}
	}
	assert.Less(t, otherPos, 3)
}

func TestRank_EmptyInput(t *testing.T) {
	r := New(zap.NewNop())
	assert.Nil(t, r.Rank("query", nil, 5))
}

func TestDomainScore(t *testing.T) {
	assert.Equal(t, 1.0, domainScore("cdc.gov"))
	assert.Equal(t, 0.95, domainScore("mit.edu"))
	assert.Equal(t, 0.75, domainScore("en.wikipedia.org"))
	assert.Equal(t, 0.8, domainScore("reuters.com"))
	assert.Equal(t, defaultDomainScore, domainScore("randomblog.net"))
}

func TestRecencyScore(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1.0, recencyScore("2026-07", now))
	assert.Equal(t, 0.8, recencyScore("2026-01", now))
	assert.Equal(t, 0.6, recencyScore("2024-06", now))
	assert.Equal(t, 0.3, recencyScore("2019-01", now))
	assert.Equal(t, 0.5, recencyScore("", now))
	assert.Equal(t, 0.5, recencyScore("unknown", now))
}

func TestLengthScore(t *testing.T) {
	assert.Equal(t, 0.2, lengthScore(100))
	assert.Equal(t, 1.0, lengthScore(5000))
	assert.Equal(t, 0.5, lengthScore(100000))
}

func TestKeyFindings_PrefersQuerySentences(t *testing.T) {
	body := "The weather was mild in March. Solar panel efficiency improved by ten percent this year. " +
		"Unrelated filler sentence about gardening tools. Solar installations doubled across the region."
	findings := keyFindings([]string{"solar", "efficiency"}, body)
	assert.Contains(t, findings, "Solar panel efficiency improved")
	assert.NotContains(t, findings, "gardening tools")
}

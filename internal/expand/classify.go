package expand

import (
	"regexp"
	"strings"

	"github.com/claritydesk/claritydesk/internal/types"
)

// queryTypePatterns maps query types to the keyword cues that signal them.
// Checked in a fixed order so classification is deterministic.
var queryTypeOrder = []types.QueryType{
	types.QueryList, types.QueryComparison, types.QueryHowTo, types.QueryAnalysis,
}

var queryTypePatterns = map[types.QueryType][]string{
	types.QueryList: {
		"find", "list", "show me", "what are", "examples of", "types of",
		"companies that", "businesses", "services", "products",
	},
	types.QueryComparison: {
		"compare", " vs ", "versus", "difference between", "better than",
		"pros and cons", "advantages", "disadvantages",
	},
	types.QueryHowTo: {
		"how to", "how do", "how can", "steps to", "guide to",
		"tutorial", "instructions",
	},
	types.QueryAnalysis: {
		"analyze", "analysis", "why", "what causes", "impact of",
		"effects of", "implications", "trends", "future of",
	},
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "about": true, "what": true, "are": true,
	"is": true, "find": true, "me": true, "that": true,
}

var wordRe = regexp.MustCompile(`[A-Za-z]+`)

// ClassifyQuery determines the query type from keyword cues, defaulting
// to factual when nothing matches.
func ClassifyQuery(query string) types.QueryType {
	lower := strings.ToLower(query)
	for _, qt := range queryTypeOrder {
		for _, pattern := range queryTypePatterns[qt] {
			if strings.Contains(lower, pattern) {
				return qt
			}
		}
	}
	return types.QueryFactual
}

// KeyEntities extracts up to max meaningful terms from the query.
func KeyEntities(query string, max int) []string {
	seen := make(map[string]bool)
	var entities []string
	for _, word := range wordRe.FindAllString(strings.ToLower(query), -1) {
		if len(word) <= 3 || stopWords[word] {
			continue
		}
		if strings.HasSuffix(word, "ing") || strings.HasSuffix(word, "ed") {
			continue
		}
		if !seen[word] {
			seen[word] = true
			entities = append(entities, word)
		}
		if len(entities) >= max {
			break
		}
	}
	return entities
}

// SubQuestions generates research sub-questions for the answer metadata.
// For list queries the first extracted entity anchors the questions when
// one is available.
func SubQuestions(query string, qt types.QueryType, entities []string) []string {
	switch qt {
	case types.QueryList:
		if len(entities) > 0 {
			subject := entities[0]
			return []string{
				"What are the best " + subject + " options?",
				"What criteria should be used to evaluate " + subject + "?",
				"What are recent developments in " + subject + "?",
			}
		}
		return []string{
			"What are the main options available?",
			"What are the key characteristics?",
			"What criteria matter when choosing?",
		}
	case types.QueryComparison:
		return []string{
			"What are the main differences?",
			"What are the advantages and disadvantages?",
			"What do experts recommend?",
		}
	case types.QueryHowTo:
		return []string{
			"What are the step-by-step instructions?",
			"What tools or resources are needed?",
			"What are common mistakes to avoid?",
		}
	case types.QueryAnalysis:
		return []string{
			"What are the current trends?",
			"What factors contribute to this?",
			"What are the implications?",
		}
	default:
		return []string{
			"What is " + query + "?",
			"What are the key facts?",
			"What is the current status?",
		}
	}
}

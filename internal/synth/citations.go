package synth

import (
	"regexp"
	"strconv"
)

// citationPattern matches inline bracketed citations like [3].
var citationPattern = regexp.MustCompile(`\[(\d{1,3})\]`)

// Citations returns the distinct 1-based source IDs cited in text, in
// first-appearance order.
func Citations(text string) []int {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[int]bool, len(matches))
	var ids []int
	for _, m := range matches {
		id, err := strconv.Atoi(m[1])
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// StripInvalidCitations removes citation markers whose ID falls outside
// 1..numSources. The surrounding prose is left intact so a model
// hallucinating [9] with four sources degrades to an uncited sentence
// instead of a dangling reference.
func StripInvalidCitations(text string, numSources int) string {
	return citationPattern.ReplaceAllStringFunc(text, func(m string) string {
		id, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || id < 1 || id > numSources {
			return ""
		}
		return m
	})
}

package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCitations(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
	}{
		{
			name:     "single citation",
			input:    "Solar grew 20% last year [1].",
			expected: []int{1},
		},
		{
			name:     "multiple citations in order",
			input:    "First claim [2]. Second claim [1][3].",
			expected: []int{2, 1, 3},
		},
		{
			name:     "duplicates collapsed",
			input:    "Claim [1]. Another [1]. More [2].",
			expected: []int{1, 2},
		},
		{
			name:     "no citations",
			input:    "No sources were referenced here.",
			expected: nil,
		},
		{
			name:     "ignores non-numeric brackets",
			input:    "See [appendix] and [1].",
			expected: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Citations(tt.input))
		})
	}
}

func TestStripInvalidCitations(t *testing.T) {
	in := "Valid claim [1]. Hallucinated claim [9]. Another valid [3]."
	out := StripInvalidCitations(in, 3)
	assert.Equal(t, "Valid claim [1]. Hallucinated claim . Another valid [3].", out)
}

func TestStripInvalidCitations_ZeroIsInvalid(t *testing.T) {
	out := StripInvalidCitations("Claim [0] and claim [1].", 2)
	assert.NotContains(t, out, "[0]")
	assert.Contains(t, out, "[1]")
}

func TestStripInvalidCitations_AllValid(t *testing.T) {
	in := "A [1] B [2] C [3]."
	assert.Equal(t, in, StripInvalidCitations(in, 3))
}

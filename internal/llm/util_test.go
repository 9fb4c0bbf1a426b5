package llm

import (
	"testing"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"status\": \"pass\"}\n```",
			expected: `{"status": "pass"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"status\": \"pass\"}\n```",
			expected: `{"status": "pass"}`,
		},
		{
			name:     "code block with language identifier",
			input:    "```javascript\n{\"status\": \"pass\"}\n```",
			expected: `{"status": "pass"}`,
		},
		{
			name:     "plain JSON untouched",
			input:    `{"status": "pass"}`,
			expected: `{"status": "pass"}`,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n{\"a\": 1}\n  ",
			expected: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	if isTransient(&HTTPError{StatusCode: 400}) {
		t.Error("400 should not be transient")
	}
	if !isTransient(&HTTPError{StatusCode: 429}) {
		t.Error("429 should be transient")
	}
	if !isTransient(&HTTPError{StatusCode: 503}) {
		t.Error("503 should be transient")
	}
}

func TestTierForTask(t *testing.T) {
	if tierForTask(TaskSynthesize) != TierAdvanced {
		t.Error("synthesis should use the advanced tier")
	}
	if tierForTask(TaskFactcheck) != TierStandard {
		t.Error("factcheck should use the standard tier")
	}
	if tierForTask(TaskRerank) != TierLite {
		t.Error("rerank should use the lite tier")
	}
}

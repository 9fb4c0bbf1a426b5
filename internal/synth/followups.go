package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/claritydesk/claritydesk/internal/llm"
	"github.com/claritydesk/claritydesk/internal/prompts"
	"github.com/claritydesk/claritydesk/internal/schemas"
	"github.com/claritydesk/claritydesk/internal/types"
)

// followUpCount is how many suggestions a result carries.
const followUpCount = 3

// answerSummaryLen bounds how much of the answer the follow-up prompt
// sees.
const answerSummaryLen = 1500

// FollowUps asks the model for follow-up questions, falling back to
// query-type templates when the model output is unusable. This stage
// never fails a request.
func (s *Synthesizer) FollowUps(ctx context.Context, query, answer string, qt types.QueryType) []string {
	if qs := s.llmFollowUps(ctx, query, answer); len(qs) > 0 {
		return qs
	}
	return templateFollowUps(query, qt)
}

func (s *Synthesizer) llmFollowUps(ctx context.Context, query, answer string) []string {
	answer = truncate(answer, answerSummaryLen)
	prompt := prompts.Format(prompts.MustGet("research.json", "follow-up-questions"), map[string]string{
		"Query":  query,
		"Answer": answer,
		"Count":  fmt.Sprintf("%d", followUpCount),
	})

	raw, err := s.client.CompleteJSON(ctx, llm.TaskFollowUp, prompt)
	if err != nil {
		s.logger.Debug("follow-up generation failed", zap.Error(err))
		return nil
	}
	if err := schemas.Validate(schemas.FollowUpSchema, raw); err != nil {
		s.logger.Debug("follow-up output rejected", zap.Error(err))
		return nil
	}

	var payload struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}

	out := make([]string, 0, followUpCount)
	for _, q := range payload.Questions {
		q = strings.TrimSpace(q)
		if q != "" {
			out = append(out, q)
		}
		if len(out) == followUpCount {
			break
		}
	}
	return out
}

// templateFollowUps produces generic but query-type-appropriate
// suggestions when the model cannot.
func templateFollowUps(query string, qt types.QueryType) []string {
	switch qt {
	case types.QueryComparison:
		return []string{
			fmt.Sprintf("What criteria matter most when evaluating %s?", query),
			fmt.Sprintf("What are the long-term trade-offs of %s?", query),
			fmt.Sprintf("What do experts recommend regarding %s?", query),
		}
	case types.QueryHowTo:
		return []string{
			fmt.Sprintf("What are common mistakes when attempting: %s?", query),
			fmt.Sprintf("What tools or resources help with: %s?", query),
			fmt.Sprintf("What prerequisites are needed for: %s?", query),
		}
	case types.QueryList:
		return []string{
			fmt.Sprintf("Which of these options is most widely used for %s?", query),
			fmt.Sprintf("How have the options for %s changed recently?", query),
			fmt.Sprintf("What criteria distinguish the options for %s?", query),
		}
	case types.QueryAnalysis:
		return []string{
			fmt.Sprintf("What are the main counterarguments regarding %s?", query),
			fmt.Sprintf("What future developments are expected for %s?", query),
			fmt.Sprintf("How do stakeholders differ on %s?", query),
		}
	default:
		return []string{
			fmt.Sprintf("What is the history behind %s?", query),
			fmt.Sprintf("What are the implications of %s?", query),
			fmt.Sprintf("How has %s changed over time?", query),
		}
	}
}

// Package synth produces the cited answer from ranked sources and runs
// the bounded factcheck-revise loop over it.
package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/claritydesk/claritydesk/internal/llm"
	"github.com/claritydesk/claritydesk/internal/prompts"
	"github.com/claritydesk/claritydesk/internal/schemas"
	"github.com/claritydesk/claritydesk/internal/types"
)

// maxRevisions bounds the factcheck-revise loop.
const maxRevisions = 2

// sourceExcerpt is how much body text each source contributes to the
// synthesis and factcheck prompts.
const sourceExcerpt = 2000

// Factcheck outcome recorded in result metadata.
const (
	FactcheckPassed    = "passed"
	FactcheckRevised   = "revised"
	FactcheckExhausted = "exhausted"
)

// Synthesizer turns ranked documents into a fact-checked answer.
type Synthesizer struct {
	client llm.Client
	logger *zap.Logger
}

// New builds a Synthesizer.
func New(client llm.Client, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{client: client, logger: logger}
}

// Output is the finalized synthesis product.
type Output struct {
	Answer          string
	FactcheckStatus string
	Revisions       int
}

// factcheckVerdict mirrors the factcheck JSON contract.
type factcheckVerdict struct {
	Status string `json:"status"`
	Issues []struct {
		Claim   string `json:"claim"`
		Problem string `json:"problem"`
	} `json:"issues"`
}

// Synthesize drafts an answer over the sources, strips hallucinated
// citations, then fact-checks and revises up to maxRevisions times.
// A failing factcheck after the last revision keeps the best draft and
// reports the exhausted status rather than failing the request.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, sources []types.ScoredDocument) (*Output, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources to synthesize from")
	}

	sourceBlock := formatSources(sources)

	answer, err := s.draft(ctx, query, sourceBlock)
	if err != nil {
		return nil, err
	}
	answer = StripInvalidCitations(answer, len(sources))

	status := FactcheckPassed
	revisions := 0
	for attempt := 0; ; attempt++ {
		verdict, err := s.factcheck(ctx, sourceBlock, answer)
		if err != nil {
			// Factcheck is a safety net, not a gate. An unusable
			// checker keeps the current draft.
			s.logger.Warn("factcheck unavailable, keeping draft", zap.Error(err))
			if revisions > 0 {
				status = FactcheckRevised
			}
			break
		}
		if verdict.Status == "pass" {
			if revisions > 0 {
				status = FactcheckRevised
			}
			break
		}
		if attempt >= maxRevisions {
			status = FactcheckExhausted
			break
		}

		revised, err := s.revise(ctx, query, sourceBlock, answer, verdict)
		if err != nil {
			s.logger.Warn("revision failed, keeping prior draft", zap.Error(err))
			status = FactcheckExhausted
			break
		}
		answer = StripInvalidCitations(revised, len(sources))
		revisions++
	}

	return &Output{Answer: answer, FactcheckStatus: status, Revisions: revisions}, nil
}

// draft runs the synthesis prompt, retrying once before giving up.
func (s *Synthesizer) draft(ctx context.Context, query, sourceBlock string) (string, error) {
	prompt := prompts.Format(prompts.MustGet("research.json", "synthesize-answer"), map[string]string{
		"Query":   query,
		"Sources": sourceBlock,
	})

	answer, err := s.client.Complete(ctx, llm.TaskSynthesize, prompt)
	if err == nil && strings.TrimSpace(answer) != "" {
		return answer, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	s.logger.Warn("synthesis attempt failed, retrying once", zap.Error(err))

	answer, err = s.client.Complete(ctx, llm.TaskSynthesize, prompt)
	if err != nil {
		return "", fmt.Errorf("synthesis failed after retry: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("synthesis produced an empty answer")
	}
	return answer, nil
}

func (s *Synthesizer) factcheck(ctx context.Context, sourceBlock, answer string) (*factcheckVerdict, error) {
	prompt := prompts.Format(prompts.MustGet("research.json", "factcheck-answer"), map[string]string{
		"Sources": sourceBlock,
		"Answer":  answer,
	})

	raw, err := s.client.CompleteJSON(ctx, llm.TaskFactcheck, prompt)
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.FactcheckSchema, raw); err != nil {
		return nil, fmt.Errorf("factcheck verdict rejected: %w", err)
	}

	var verdict factcheckVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return nil, fmt.Errorf("failed to parse factcheck verdict: %w", err)
	}
	if verdict.Status == "issues" && len(verdict.Issues) == 0 {
		// An issues verdict with nothing actionable counts as a pass.
		verdict.Status = "pass"
	}
	return &verdict, nil
}

func (s *Synthesizer) revise(ctx context.Context, query, sourceBlock, draft string, verdict *factcheckVerdict) (string, error) {
	var issues strings.Builder
	for i, issue := range verdict.Issues {
		fmt.Fprintf(&issues, "%d. Claim: %s\n   Problem: %s\n", i+1, issue.Claim, issue.Problem)
	}

	prompt := prompts.Format(prompts.MustGet("research.json", "revise-answer"), map[string]string{
		"Query":   query,
		"Sources": sourceBlock,
		"Draft":   draft,
		"Issues":  issues.String(),
	})

	revised, err := s.client.Complete(ctx, llm.TaskSynthesize, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(revised) == "" {
		return "", fmt.Errorf("revision produced an empty answer")
	}
	return revised, nil
}

// formatSources renders the numbered source block shared by the
// synthesis, factcheck and revision prompts. The numbering here IS the
// citation contract: source i appears as [i].
func formatSources(sources []types.ScoredDocument) string {
	var sb strings.Builder
	for i, src := range sources {
		body := truncate(src.Body, sourceExcerpt)
		fmt.Fprintf(&sb, "[%d] %s (%s)\n%s\n\n", i+1, src.ExtractedTitle, src.Domain, body)
	}
	return sb.String()
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiDefaults maps tiers to Gemini model names.
var geminiDefaults = map[Tier]string{
	TierLite:     "gemini-2.5-flash-lite",
	TierStandard: "gemini-2.5-flash",
	TierAdvanced: "gemini-2.5-pro",
}

// Gemini implements Client over the Google Gemini API.
type Gemini struct {
	client *genai.Client
	models map[Tier]string
}

// NewGemini creates a Gemini-backed client.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	models := make(map[Tier]string, len(geminiDefaults))
	for tier, model := range geminiDefaults {
		models[tier] = model
	}
	for tier, model := range cfg.Models {
		models[tier] = model
	}
	return &Gemini{client: client, models: models}, nil
}

func (g *Gemini) model(task Task) *genai.GenerativeModel {
	name := g.models[tierForTask(task)]
	model := g.client.GenerativeModel(name)
	// Low temperature keeps synthesis and factcheck output stable.
	model.SetTemperature(0.1)
	return model
}

// Complete generates free-form text.
func (g *Gemini) Complete(ctx context.Context, task Task, prompt string) (string, error) {
	return withRetry(ctx, func() (string, error) {
		resp, err := g.model(task).GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", fmt.Errorf("gemini generation failed: %w", err)
		}
		return textFromResponse(resp)
	})
}

// CompleteJSON generates JSON output with markdown fences stripped.
func (g *Gemini) CompleteJSON(ctx context.Context, task Task, prompt string) (string, error) {
	return withRetry(ctx, func() (string, error) {
		model := g.model(task)
		model.ResponseMIMEType = "application/json"
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", fmt.Errorf("gemini generation failed: %w", err)
		}
		text, err := textFromResponse(resp)
		if err != nil {
			return "", err
		}
		return CleanJSONBlock(text), nil
	})
}

// Verify sends a one-token probe to confirm the key works.
func (g *Gemini) Verify(ctx context.Context) error {
	model := g.client.GenerativeModel(g.models[TierLite])
	_, err := model.GenerateContent(ctx, genai.Text("ping"))
	if err != nil {
		return fmt.Errorf("gemini verification failed: %w", err)
	}
	return nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

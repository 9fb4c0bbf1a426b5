// Package llm abstracts the language model providers used by the
// research pipeline. Each pipeline task maps to a model tier so a
// cheap model handles reranking while synthesis gets the capable one.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Task identifies which pipeline operation a completion serves.
type Task string

// Pipeline tasks routed through the client.
const (
	TaskRerank     Task = "rerank"
	TaskSynthesize Task = "synthesize"
	TaskFactcheck  Task = "factcheck"
	TaskFollowUp   Task = "followup"
)

// Tier represents the capability level of a model.
type Tier string

// Model tiers.
const (
	TierLite     Tier = "lite"
	TierStandard Tier = "standard"
	TierAdvanced Tier = "advanced"
)

// tierForTask assigns each pipeline task its model tier.
func tierForTask(task Task) Tier {
	switch task {
	case TaskSynthesize:
		return TierAdvanced
	case TaskFactcheck:
		return TierStandard
	default:
		return TierLite
	}
}

// Client is the provider abstraction used by every LLM-backed stage.
type Client interface {
	// Complete generates free-form text for a pipeline task.
	Complete(ctx context.Context, task Task, prompt string) (string, error)
	// CompleteJSON generates output that must parse as JSON. Markdown
	// code fences are stripped before return.
	CompleteJSON(ctx context.Context, task Task, prompt string) (string, error)
	// Verify performs a minimal probe to confirm the provider is
	// reachable and the credentials work.
	Verify(ctx context.Context) error
	// Close releases any resources held by the client.
	Close() error
}

// Provider identifies an LLM backend.
type Provider string

// Supported providers.
const (
	ProviderGemini           Provider = "gemini"
	ProviderOpenAICompatible Provider = "openai_compatible"
)

// Config selects a provider and its connection details.
type Config struct {
	Provider Provider
	// Gemini
	GeminiAPIKey string
	// OpenAI-compatible endpoint
	BaseURL string
	APIKey  string
	Model   string
	// Models overrides the tier-to-model mapping. Missing tiers fall
	// back to the provider default.
	Models map[Tier]string
}

// NewClient builds a client for the configured provider.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGemini(ctx, cfg)
	case ProviderOpenAICompatible:
		return NewOpenAICompatible(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}

// retryDelay is the pause before the single transient retry.
const retryDelay = 2 * time.Second

// withRetry runs fn and retries exactly once on a transient failure.
// Context cancellation is never retried.
func withRetry(ctx context.Context, fn func() (string, error)) (string, error) {
	out, err := fn()
	if err == nil || !isTransient(err) || ctx.Err() != nil {
		return out, err
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(retryDelay):
	}
	return fn()
}

// isTransient reports whether an error looks like a temporary network
// or service hiccup rather than a hard rejection.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode == 429 || he.StatusCode >= 500
	}
	return false
}

// HTTPError carries the status of a failed provider request.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("LLM provider returned HTTP %d: %s", e.StatusCode, e.Body)
}

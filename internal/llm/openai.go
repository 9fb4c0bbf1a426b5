package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAICompatible implements Client against any OpenAI-style
// chat/completions endpoint (llama.cpp, vLLM, LM Studio, Ollama).
// Responses are consumed as a server-sent-event stream.
type OpenAICompatible struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAICompatible creates a client for an OpenAI-compatible server.
func NewOpenAICompatible(cfg Config) (*OpenAICompatible, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for OpenAI-compatible provider")
	}
	model := cfg.Model
	if model == "" {
		model = "mistral-7b-instruct"
	}
	return &OpenAICompatible{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete generates free-form text.
func (o *OpenAICompatible) Complete(ctx context.Context, task Task, prompt string) (string, error) {
	return withRetry(ctx, func() (string, error) {
		return o.chat(ctx, prompt)
	})
}

// CompleteJSON generates text expected to be JSON. Local models have no
// enforced JSON mode, so the prompt carries the format instruction and
// fences are stripped afterwards.
func (o *OpenAICompatible) CompleteJSON(ctx context.Context, task Task, prompt string) (string, error) {
	out, err := withRetry(ctx, func() (string, error) {
		return o.chat(ctx, prompt+"\n\nRespond with valid JSON only, no markdown.")
	})
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(out), nil
}

// Verify checks that the endpoint answers a trivial completion.
func (o *OpenAICompatible) Verify(ctx context.Context) error {
	vctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	_, err := o.chat(vctx, "ping")
	return err
}

// Close is a no-op; the client holds no persistent connections.
func (o *OpenAICompatible) Close() error { return nil }

func (o *OpenAICompatible) chat(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       o.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.1,
		Stream:      true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	return readStream(resp.Body)
}

// readStream assembles the completion from SSE data lines. Servers that
// ignore the stream flag and return a plain JSON object are handled too.
func readStream(r io.Reader) (string, error) {
	var sb strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	sawEvent := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			if !sawEvent && strings.HasPrefix(line, "{") {
				// Non-streaming response body.
				var chunk chatChunk
				if err := json.Unmarshal([]byte(line), &chunk); err == nil && len(chunk.Choices) > 0 {
					if c := chunk.Choices[0].Message.Content; c != "" {
						return c, nil
					}
				}
			}
			continue
		}
		sawEvent = true
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}
		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) > 0 {
			sb.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read stream: %w", err)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty completion from provider")
	}
	return sb.String(), nil
}

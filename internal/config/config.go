// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents pipeline configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or environment
// variables.
type Config struct {
	// Search backend
	SearchProvider string `json:"search_provider,omitempty"` // "searxng" or "google"
	SearxURL       string `json:"searx_url,omitempty"`
	GoogleAPIKey   string `json:"google_api_key,omitempty"`
	GoogleCX       string `json:"google_cx,omitempty"`

	// LLM provider
	LLMProvider   string `json:"llm_provider,omitempty"` // "gemini" or "openai_compatible"
	GeminiAPIKey  string `json:"gemini_api_key,omitempty"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`
	OpenAIAPIKey  string `json:"openai_api_key,omitempty"`
	OpenAIModel   string `json:"openai_model,omitempty"`

	// Behavior
	GDPRMode     bool    `json:"gdpr_mode,omitempty"`
	EnableRerank bool    `json:"enable_rerank,omitempty"`
	UseBrowser   bool    `json:"use_browser,omitempty"`
	Verbose      bool    `json:"verbose,omitempty"`
	CandidateCap float64 `json:"candidate_cap,omitempty"` // multiplier over max_sources

	// Limits
	FetchConcurrency  int `json:"fetch_concurrency,omitempty"`
	SearchConcurrency int `json:"search_concurrency,omitempty"`
	MinContentLength  int `json:"min_content_length,omitempty"`
	CacheSize         int `json:"cache_size,omitempty"`
	CacheTTLSeconds   int `json:"cache_ttl_seconds,omitempty"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		SearchProvider:    "searxng",
		SearxURL:          "https://searx.be",
		LLMProvider:       "gemini",
		OpenAIModel:       "mistral-7b-instruct",
		CandidateCap:      3.0,
		FetchConcurrency:  5,
		SearchConcurrency: 3,
		MinContentLength:  100,
		CacheSize:         64,
		CacheTTLSeconds:   900,
	}
}

// Load reads configuration from a JSON file, then applies environment
// overrides and defaults. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Config{}

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return cfg, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()
	cfg = cfg.MergeWithDefaults(Defaults())

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv fills empty fields from environment variables.
func (c *Config) applyEnv() {
	setIfEmpty := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	setIfEmpty(&c.SearchProvider, "SEARCH_PROVIDER")
	setIfEmpty(&c.SearxURL, "SEARX_URL")
	setIfEmpty(&c.GoogleAPIKey, "GOOGLE_API_KEY")
	setIfEmpty(&c.GoogleCX, "GOOGLE_SEARCH_ENGINE_ID")
	setIfEmpty(&c.LLMProvider, "LLM_PROVIDER")
	setIfEmpty(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setIfEmpty(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setIfEmpty(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setIfEmpty(&c.OpenAIModel, "OPENAI_MODEL")

	if !c.GDPRMode {
		c.GDPRMode, _ = strconv.ParseBool(os.Getenv("GDPR_MODE"))
	}
	if !c.EnableRerank {
		c.EnableRerank, _ = strconv.ParseBool(os.Getenv("ENABLE_RERANK"))
	}
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. Bool fields are not merged; flags always win for bools.
func (c Config) MergeWithDefaults(defaults Config) Config {
	result := c

	if result.SearchProvider == "" {
		result.SearchProvider = defaults.SearchProvider
	}
	if result.SearxURL == "" {
		result.SearxURL = defaults.SearxURL
	}
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.OpenAIModel == "" {
		result.OpenAIModel = defaults.OpenAIModel
	}
	if result.CandidateCap == 0 {
		result.CandidateCap = defaults.CandidateCap
	}
	if result.FetchConcurrency == 0 {
		result.FetchConcurrency = defaults.FetchConcurrency
	}
	if result.SearchConcurrency == 0 {
		result.SearchConcurrency = defaults.SearchConcurrency
	}
	if result.MinContentLength == 0 {
		result.MinContentLength = defaults.MinContentLength
	}
	if result.CacheSize == 0 {
		result.CacheSize = defaults.CacheSize
	}
	if result.CacheTTLSeconds == 0 {
		result.CacheTTLSeconds = defaults.CacheTTLSeconds
	}

	return result
}

// Validate checks that the configuration has consistent values.
func (c Config) Validate() error {
	switch c.SearchProvider {
	case "searxng", "google":
	default:
		return fmt.Errorf("config error: unknown search_provider %q", c.SearchProvider)
	}
	if c.SearchProvider == "google" && (c.GoogleAPIKey == "" || c.GoogleCX == "") {
		return fmt.Errorf("config error: google search requires google_api_key and google_cx")
	}

	switch c.LLMProvider {
	case "gemini", "openai_compatible":
	default:
		return fmt.Errorf("config error: unknown llm_provider %q", c.LLMProvider)
	}
	if c.LLMProvider == "openai_compatible" && c.OpenAIBaseURL == "" {
		return fmt.Errorf("config error: openai_compatible provider requires openai_base_url")
	}

	if c.CandidateCap < 1 {
		return fmt.Errorf("config error: candidate_cap must be at least 1")
	}
	if c.FetchConcurrency < 1 || c.SearchConcurrency < 1 {
		return fmt.Errorf("config error: concurrency limits must be positive")
	}
	return nil
}

// CacheTTL returns the cache TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

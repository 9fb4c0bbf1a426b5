package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Request limits.
const (
	MaxQueryLength = 500

	DefaultMaxSources     = 8
	DefaultTimeoutSeconds = 300
)

var validate = validator.New()

// WithDefaults fills unset options with pipeline defaults.
func (o ResearchOptions) WithDefaults() ResearchOptions {
	if o.Depth == "" {
		o.Depth = DepthStandard
	}
	if o.MaxSources == 0 {
		o.MaxSources = DefaultMaxSources
	}
	if o.TimeoutSeconds == 0 {
		o.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return o
}

// Validate checks a request before any pipeline work happens.
func (r *ResearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("query must not be empty")
	}
	if len(r.Query) > MaxQueryLength {
		return fmt.Errorf("query exceeds %d characters", MaxQueryLength)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

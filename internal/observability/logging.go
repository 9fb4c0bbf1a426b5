// Package observability provides logger construction for the pipeline.
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Verbose enables debug level and
// console encoding; otherwise production JSON output is used.
func NewLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	return zap.NewProduction()
}

// QueryField logs a query respecting GDPR mode: in GDPR mode only the
// length is recorded, never the text.
func QueryField(query string, gdprMode bool) zap.Field {
	if gdprMode {
		return zap.Int("query_length", len(query))
	}
	return zap.String("query", query)
}

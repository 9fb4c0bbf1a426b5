// Package schemas validates structured LLM output against JSON
// Schemas before the pipeline trusts it.
package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FactcheckSchema constrains the fact-checker verdict payload.
const FactcheckSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["status"],
  "properties": {
    "status": {"type": "string", "enum": ["pass", "issues"]},
    "issues": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["claim", "problem"],
        "properties": {
          "claim": {"type": "string", "minLength": 1},
          "problem": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

// FollowUpSchema constrains the follow-up suggestion payload.
const FollowUpSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    }
  }
}`

// ValidationError reports which fields failed schema validation.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single validation failure at a field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Validate checks a JSON document string against a schema string.
// A malformed document returns a plain error; a well-formed document
// that violates the schema returns a *ValidationError.
func Validate(schema, document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return fmt.Errorf("failed to validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return ve
}

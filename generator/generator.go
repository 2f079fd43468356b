package generator

import (
	"context"
	"encoding/json"
	"strings"
)

// Request is one generation call.
type Request struct {
	// Operation names the logical operation, e.g. "resume_rewrite".
	Operation string `json:"operation"`

	// Prompt is the user prompt.
	Prompt string `json:"prompt"`

	// SystemInstruction is an optional system prompt.
	SystemInstruction string `json:"system_instruction,omitempty"`

	// ResponseSchema is an optional JSON schema the result must follow.
	ResponseSchema json.RawMessage `json:"response_schema,omitempty"`

	// Temperature overrides the model default when set.
	Temperature *float32 `json:"temperature,omitempty"`

	// PlainText returns the response text encoded as a JSON string instead
	// of requiring a JSON response.
	PlainText bool `json:"plain_text,omitempty"`
}

// Validate checks the request.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Operation) == "" {
		return ErrMissingOperation
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// Generator produces a JSON result for a request.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: must honor cancellation/deadlines.
//   - Errors: failures carrying an HTTP status should implement
//     StatusCode() int so callers can tell transient failures apart.
type Generator interface {
	Generate(ctx context.Context, req Request) (json.RawMessage, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, req Request) (json.RawMessage, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req Request) (json.RawMessage, error) {
	return f(ctx, req)
}

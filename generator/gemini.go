package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/jonwraymond/genops/observe"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiConfig configures the Gemini generator.
type GeminiConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	Temperature     float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens" validate:"gte=0"`
}

// models is the subset of genai.Models used by Gemini.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini generates results with the Gemini API.
type Gemini struct {
	models models
	cfg    GeminiConfig
	logger observe.Logger
}

// NewGemini creates a Gemini API client.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger observe.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("generator: create gemini client: %w", err)
	}
	return newGemini(client.Models, cfg, logger), nil
}

func newGemini(m models, cfg GeminiConfig, logger observe.Logger) *Gemini {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = observe.NewNopLogger()
	}
	return &Gemini{models: m, cfg: cfg, logger: logger}
}

// Model returns the configured model name.
func (g *Gemini) Model() string { return g.cfg.Model }

func (g *Gemini) Generate(ctx context.Context, req Request) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := g.models.GenerateContent(ctx, g.cfg.Model, genai.Text(req.Prompt), g.config(req))
	if err != nil {
		return nil, wrapAPIError(err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	g.logger.Debug(ctx, "gemini response received",
		observe.Field{Key: "operation", Value: req.Operation},
		observe.Field{Key: "model", Value: g.cfg.Model},
		observe.Field{Key: "response_bytes", Value: len(text)},
	)

	if req.PlainText {
		out, err := json.Marshal(text)
		if err != nil {
			return nil, err
		}
		return out, nil
	}

	text = stripFence(text)
	if !json.Valid([]byte(text)) {
		return nil, ErrInvalidResponse
	}
	return json.RawMessage(text), nil
}

func (g *Gemini) config(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	switch {
	case req.Temperature != nil:
		cfg.Temperature = genai.Ptr(*req.Temperature)
	case g.cfg.Temperature > 0:
		cfg.Temperature = genai.Ptr(g.cfg.Temperature)
	}
	if g.cfg.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = g.cfg.MaxOutputTokens
	}
	if !req.PlainText {
		cfg.ResponseMIMEType = "application/json"
		if len(req.ResponseSchema) > 0 {
			cfg.ResponseJsonSchema = req.ResponseSchema
		}
	}
	return cfg
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyResponse
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: %s", ErrBlocked, genai.FinishReasonSafety)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// stripFence removes a surrounding markdown code fence.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func wrapAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Code: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &StatusError{Code: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message, Err: err}
	}
	return fmt.Errorf("generator: gemini: %w", err)
}

var _ Generator = (*Gemini)(nil)

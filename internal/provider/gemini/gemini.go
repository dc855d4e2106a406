// Package gemini implements provider.Provider on top of the Google Gemini API.
package gemini

import (
	"context"
	"log/slog"

	"github.com/Cyclone1070/termchat/internal/provider"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiProvider implements the Provider interface for Google Gemini.
type GeminiProvider struct {
	client GeminiClient
	logger *slog.Logger
}

// New creates a new GeminiProvider with the specified client.
func New(client GeminiClient, logger *slog.Logger) *GeminiProvider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GeminiProvider{client: client, logger: logger}
}

// NewFromAPIKey builds the SDK client and wraps it.
func NewFromAPIKey(ctx context.Context, apiKey string, logger *slog.Logger) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, provider.ErrMissingAPIKey
	}
	client, err := NewRealGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return New(client, logger), nil
}

// Name implements provider.Provider.
func (p *GeminiProvider) Name() string { return "gemini" }

// DefaultModel implements provider.Provider.
func (p *GeminiProvider) DefaultModel() string { return DefaultModel }

// Generate sends a request to the Gemini API and returns the response.
func (p *GeminiProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	// Convert internal types to Gemini types
	contents, err := toGeminiContents(req.Messages)
	if err != nil {
		return nil, err
	}
	config := toGeminiConfig(req)

	// Call Gemini API
	resp, err := p.client.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	// Convert response
	out, err := fromGeminiResponse(resp, req.Model)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("completion received",
		"model", out.Model,
		"stop_reason", out.StopReason,
		"input_tokens", out.Usage.InputTokens,
		"output_tokens", out.Usage.OutputTokens,
	)
	return out, nil
}

var _ provider.Provider = (*GeminiProvider)(nil)

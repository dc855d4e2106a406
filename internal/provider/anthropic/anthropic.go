// Package anthropic implements provider.Provider on top of the Anthropic Messages API.
package anthropic

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Cyclone1070/termchat/internal/provider"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// Options configures the adapter.
type Options struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
	Timeout    time.Duration
	// Stream switches to the streaming endpoint and reports text deltas as they arrive.
	Stream     bool
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Provider talks to the Messages API.
type Provider struct {
	client anthropic.Client
	stream bool
	logger *slog.Logger
}

// New creates a provider. The credential is required.
func New(opts Options) (*Provider, error) {
	if opts.APIKey == "" {
		return nil, provider.ErrMissingAPIKey
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Provider{
		client: anthropic.NewClient(reqOpts...),
		stream: opts.Stream,
		logger: logger,
	}, nil
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return "anthropic" }

// DefaultModel implements provider.Provider.
func (p *Provider) DefaultModel() string { return DefaultModel }

// Generate implements provider.Provider.
func (p *Provider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	params, err := toParams(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var msg *anthropic.Message
	if p.stream {
		msg, err = p.generateStream(ctx, params, req.OnText)
	} else {
		msg, err = p.client.Messages.New(ctx, params)
	}
	if err != nil {
		return nil, mapError(ctx, err)
	}

	resp, err := fromMessage(msg)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("completion received",
		"model", resp.Model,
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"blocks", len(resp.Content),
		"elapsed", time.Since(start),
	)
	return resp, nil
}

func (p *Provider) generateStream(ctx context.Context, params anthropic.MessageNewParams, onText func(string)) (*anthropic.Message, error) {
	stream := p.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return nil, provider.MalformedError("failed to accumulate stream: " + err.Error())
		}
		if onText == nil {
			continue
		}
		if ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok {
				onText(delta.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return &message, nil
}

var _ provider.Provider = (*Provider)(nil)

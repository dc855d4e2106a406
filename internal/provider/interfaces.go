package provider

import (
	"context"

	"github.com/Cyclone1070/termchat/internal/tool"
)

// StopReason explains why the model stopped generating.
type StopReason string

const (
	StopReasonEndTurn   StopReason = "end_turn"
	StopReasonToolUse   StopReason = "tool_use"
	StopReasonMaxTokens StopReason = "max_tokens"
	StopReasonStop      StopReason = "stop_sequence"
	StopReasonRefusal   StopReason = "refusal"
)

// Request is everything a transport needs for one round trip.
type Request struct {
	Model     string
	System    string
	Messages  []Message
	MaxTokens int
	Tools     []tool.Declaration

	// OnText, if set, receives reply text fragments as they stream in.
	// Transports that do not stream never call it.
	OnText func(string)
}

// Usage reports token accounting for a single round trip.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the structured reply of a single round trip.
// Content only ever holds TextBlock and ToolUseBlock values.
type Response struct {
	Content    []ContentBlock
	StopReason StopReason
	Usage      Usage
	Model      string
}

// Message converts the response into an assistant message.
func (r *Response) Message() Message {
	content := make([]ContentBlock, len(r.Content))
	copy(content, r.Content)
	return Message{Role: RoleAssistant, Content: content}
}

// Provider sends a conversation to a remote model.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Generate performs one request/response exchange.
	// All failures are returned as *ProviderError.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Name identifies the backend, e.g. "anthropic".
	Name() string

	// DefaultModel is used when the configuration does not name a model.
	DefaultModel() string
}

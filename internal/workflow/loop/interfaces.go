package loop

import (
	"context"

	"github.com/Cyclone1070/termchat/internal/provider"
	"github.com/Cyclone1070/termchat/internal/tool"
	"github.com/Cyclone1070/termchat/internal/workflow"
)

// llmProvider communicates with an LLM.
type llmProvider interface {
	// Generate sends the conversation to the LLM and returns its reply.
	Generate(ctx context.Context, req *provider.Request) (*provider.Response, error)
}

// toolManager manages tool storage and execution.
type toolManager interface {
	// Declarations returns all tool schemas for the LLM.
	Declarations() []tool.Declaration

	// InvokeAll runs every call and returns exactly one result per call, in order.
	// It emits ToolStartEvent and ToolEndEvent to the events channel.
	InvokeAll(ctx context.Context, calls []provider.ToolUseBlock, events chan<- workflow.Event) []provider.ToolResultBlock
}

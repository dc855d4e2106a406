package provider

import "strings"

// Role identifies the author of a message in the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ContentBlock is one element of a message's content.
// Variants: TextBlock, ToolUseBlock, ToolResultBlock. Callers use type switches.
type ContentBlock interface {
	isContentBlock()
}

// TextBlock is plain text produced by the user or the model.
type TextBlock struct {
	Text string
}

func (TextBlock) isContentBlock() {}

// ToolUseBlock is a model-issued request to run a named tool.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input map[string]any
}

func (ToolUseBlock) isContentBlock() {}

// ToolResultBlock answers exactly one ToolUseBlock, matched by ToolUseID.
type ToolResultBlock struct {
	ToolUseID string
	Output    string
	IsError   bool
}

func (ToolResultBlock) isContentBlock() {}

// Message is a single conversation entry.
type Message struct {
	Role    Role
	Content []ContentBlock
}

// NewUserMessage creates a user message holding a single text block.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{TextBlock{Text: text}}}
}

// NewToolMessage creates a tool message carrying the given results.
func NewToolMessage(results []ToolResultBlock) Message {
	content := make([]ContentBlock, 0, len(results))
	for _, r := range results {
		content = append(content, r)
	}
	return Message{Role: RoleTool, Content: content}
}

// Text joins all text blocks in arrival order.
func (m Message) Text() string {
	var parts []string
	for _, b := range m.Content {
		if tb, ok := b.(TextBlock); ok {
			parts = append(parts, tb.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// ToolUses returns the tool_use blocks in order of appearance.
func (m Message) ToolUses() []ToolUseBlock {
	var out []ToolUseBlock
	for _, b := range m.Content {
		if tu, ok := b.(ToolUseBlock); ok {
			out = append(out, tu)
		}
	}
	return out
}

// ToolResults returns the tool_result blocks in order of appearance.
func (m Message) ToolResults() []ToolResultBlock {
	var out []ToolResultBlock
	for _, b := range m.Content {
		if tr, ok := b.(ToolResultBlock); ok {
			out = append(out, tr)
		}
	}
	return out
}

// HasToolUse reports whether the message requests any tool calls.
func (m Message) HasToolUse() bool {
	for _, b := range m.Content {
		if _, ok := b.(ToolUseBlock); ok {
			return true
		}
	}
	return false
}

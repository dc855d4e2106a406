// Package conversation holds the ordered message history of a chat session
// and enforces which message may follow which.
package conversation

import (
	"errors"
	"fmt"

	"github.com/Cyclone1070/termchat/internal/provider"
)

// ErrInvalidSequence is returned when an append would break the message ordering rules.
var ErrInvalidSequence = errors.New("invalid message sequence")

// Conversation is an append-only message log.
// It is not safe for concurrent use; the turn engine is its only writer.
type Conversation struct {
	messages []provider.Message
}

// New returns an empty conversation.
func New() *Conversation {
	return &Conversation{}
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last returns the most recent message.
func (c *Conversation) Last() (provider.Message, bool) {
	if len(c.messages) == 0 {
		return provider.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Snapshot returns a copy of the messages. Content slices are shared but never mutated.
func (c *Conversation) Snapshot() []provider.Message {
	out := make([]provider.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Append adds msg if it may follow the current last message.
func (c *Conversation) Append(msg provider.Message) error {
	var prev *provider.Message
	if n := len(c.messages); n > 0 {
		prev = &c.messages[n-1]
	}
	if err := CanFollow(prev, msg); err != nil {
		return err
	}
	c.messages = append(c.messages, msg)
	return nil
}

// Validate checks the whole history.
func (c *Conversation) Validate() error {
	return ValidateSequence(c.messages)
}

// ValidateSequence checks that every message in msgs may follow its predecessor.
func ValidateSequence(msgs []provider.Message) error {
	var prev *provider.Message
	for i := range msgs {
		if err := CanFollow(prev, msgs[i]); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		prev = &msgs[i]
	}
	return nil
}

// CanFollow reports whether next may be appended after prev. A nil prev means an empty history.
func CanFollow(prev *provider.Message, next provider.Message) error {
	if len(next.Content) == 0 {
		return fmt.Errorf("%w: %s message has no content", ErrInvalidSequence, next.Role)
	}
	if prev != nil && prev.Role == next.Role {
		return fmt.Errorf("%w: two consecutive %s messages", ErrInvalidSequence, next.Role)
	}

	switch next.Role {
	case provider.RoleUser:
		if prev != nil && prev.HasToolUse() {
			return fmt.Errorf("%w: tool calls are awaiting results", ErrInvalidSequence)
		}
		if err := onlyBlocks[provider.TextBlock](next); err != nil {
			return err
		}
	case provider.RoleAssistant:
		if prev == nil {
			return fmt.Errorf("%w: conversation must start with a user message", ErrInvalidSequence)
		}
		for _, b := range next.Content {
			if _, ok := b.(provider.ToolResultBlock); ok {
				return fmt.Errorf("%w: assistant message contains a tool result", ErrInvalidSequence)
			}
		}
		if err := uniqueToolUseIDs(next); err != nil {
			return err
		}
	case provider.RoleTool:
		if prev == nil || prev.Role != provider.RoleAssistant || !prev.HasToolUse() {
			return fmt.Errorf("%w: tool message must answer an assistant message with tool calls", ErrInvalidSequence)
		}
		if err := onlyBlocks[provider.ToolResultBlock](next); err != nil {
			return err
		}
		if err := resultsMatch(prev.ToolUses(), next.ToolResults()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidSequence, next.Role)
	}
	return nil
}

func onlyBlocks[T provider.ContentBlock](msg provider.Message) error {
	for _, b := range msg.Content {
		if _, ok := b.(T); !ok {
			return fmt.Errorf("%w: %s message contains %T", ErrInvalidSequence, msg.Role, b)
		}
	}
	return nil
}

func uniqueToolUseIDs(msg provider.Message) error {
	seen := make(map[string]bool)
	for _, tu := range msg.ToolUses() {
		if tu.ID == "" {
			return fmt.Errorf("%w: tool call %q has no id", ErrInvalidSequence, tu.Name)
		}
		if seen[tu.ID] {
			return fmt.Errorf("%w: duplicate tool call id %q", ErrInvalidSequence, tu.ID)
		}
		seen[tu.ID] = true
	}
	return nil
}

// resultsMatch requires exactly one result per tool call id.
func resultsMatch(uses []provider.ToolUseBlock, results []provider.ToolResultBlock) error {
	pending := make(map[string]bool, len(uses))
	for _, u := range uses {
		pending[u.ID] = true
	}
	for _, r := range results {
		if !pending[r.ToolUseID] {
			return fmt.Errorf("%w: unexpected or duplicate result for tool call %q", ErrInvalidSequence, r.ToolUseID)
		}
		delete(pending, r.ToolUseID)
	}
	if len(pending) > 0 {
		return fmt.Errorf("%w: %d tool call(s) have no result", ErrInvalidSequence, len(pending))
	}
	return nil
}

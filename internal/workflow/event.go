package workflow

import (
	"context"

	"github.com/Cyclone1070/termchat/internal/artifact"
)

// Event is the interface for all workflow events.
// UI handles events via type switch.
type Event interface {
	isEvent()
}

// ThinkingEvent is emitted before each completion request.
type ThinkingEvent struct {
	RoundTrip int
}

func (ThinkingEvent) isEvent() {}

// TextDeltaEvent carries a streamed fragment of the reply being generated.
type TextDeltaEvent struct {
	Text string
}

func (TextDeltaEvent) isEvent() {}

// TextEvent is emitted when an assistant message has display text.
// Artifact blocks are already replaced by placeholders.
type TextEvent struct {
	Text string
}

func (TextEvent) isEvent() {}

// ToolStartEvent is emitted when a tool execution begins.
type ToolStartEvent struct {
	ID             string
	ToolName       string
	RequestDisplay string // e.g. {"expression":"15 * 23"}
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a tool execution completes.
type ToolEndEvent struct {
	ID       string
	ToolName string
	Output   string
	IsError  bool
}

func (ToolEndEvent) isEvent() {}

// ArtifactEvent is emitted for every artifact extracted during a turn.
type ArtifactEvent struct {
	Artifact artifact.Artifact
}

func (ArtifactEvent) isEvent() {}

// DoneEvent is emitted when the turn finishes, successfully or not.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}

// Emit sends e on events unless events is nil or ctx is done.
// It reports whether the event was delivered.
func Emit(ctx context.Context, events chan<- Event, e Event) bool {
	if events == nil {
		return false
	}
	select {
	case events <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

package ui

import (
	"context"

	"github.com/Cyclone1070/termchat/internal/artifact"
	"github.com/Cyclone1070/termchat/internal/workflow"
)

// Command types sent from the UI to the application.
const (
	CommandOpenArtifact = "open_artifact"
	CommandCopyArtifact = "copy_artifact"
	CommandRetry        = "retry"
	CommandReset        = "reset"
	CommandCancel       = "cancel"
)

// UICommand is a user action the UI cannot handle on its own.
type UICommand struct {
	Type     string
	Args     map[string]string
	Artifact *artifact.Artifact
}

// UserInterface defines the contract for all user interactions.
// It follows a Read/Write pattern for clarity.
//
// Context Usage:
// ReadInput accepts context.Context for cancellation support.
// If the context is cancelled, it returns immediately with the context's error.
type UserInterface interface {
	// ReadInput waits for the user to submit a message
	ReadInput(ctx context.Context, prompt string) (string, error)

	// WriteStatus displays ephemeral status updates (e.g., "Thinking...")
	WriteStatus(phase string, message string)

	// WriteMessage adds an informational line to the chat history
	WriteMessage(content string)

	// WriteError adds an error line to the chat history
	WriteError(content string)

	// SetModel shows the active model in the status bar
	SetModel(model string)

	// ClearHistory empties the chat history and artifact list
	ClearHistory()

	// Events is where turn events are delivered for display
	Events() chan<- workflow.Event

	// Commands delivers user actions for the application to perform
	Commands() <-chan UICommand

	// Ready is closed once the UI accepts requests
	Ready() <-chan struct{}

	// Start runs the UI until the user quits
	Start() error
}

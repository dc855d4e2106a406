package models

import (
	"github.com/Cyclone1070/termchat/internal/artifact"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

// Roles of chat history entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
	RoleError     = "error"
)

// Status phases shown in the status bar.
const (
	PhaseReady     = "ready"
	PhaseThinking  = "thinking"
	PhaseExecuting = "executing"
	PhaseDone      = "done"
	PhaseError     = "error"
)

// Message is one entry of the chat history.
type Message struct {
	Role    string
	Content string
}

// State holds everything the views render.
type State struct {
	Width  int
	Height int

	Input    textinput.Model
	Viewport viewport.Model
	Spinner  spinner.Model

	Messages []Message
	// Draft is the reply currently being streamed.
	Draft string

	// Artifacts in session order. The popup and /open use 1-based numbers.
	Artifacts     []artifact.Artifact
	ShowArtifacts bool
	ArtifactIndex int

	StatusPhase   string
	StatusMessage string
	CurrentModel  string
	DotCount      int

	CanSubmit bool
	Busy      bool
}

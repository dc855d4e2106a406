package ui

import (
	"context"
	"time"

	"github.com/Cyclone1070/termchat/internal/config"
	"github.com/Cyclone1070/termchat/internal/ui/models"
	"github.com/Cyclone1070/termchat/internal/ui/services"
	"github.com/Cyclone1070/termchat/internal/ui/views"
	"github.com/Cyclone1070/termchat/internal/workflow"
	tea "github.com/charmbracelet/bubbletea"
)

// UI implements the UserInterface using Bubble Tea
type UI struct {
	program *tea.Program

	// Application -> UI channels
	inputReq     chan inputRequest
	inputResp    chan string
	statusChan   chan statusMsg
	messageChan  chan chatMsg
	eventChan    chan workflow.Event
	setModelChan chan string
	clearChan    chan struct{}

	// UI -> Application
	commandChan chan UICommand

	// Ready signal
	readyChan chan struct{}
}

// Internal message types
type inputRequest struct {
	Prompt string
}

type statusMsg struct {
	Phase   string
	Message string
}

type chatMsg struct {
	Role    string
	Content string
}

// UIChannels holds the channels for UI communication
type UIChannels struct {
	InputReq     chan inputRequest
	InputResp    chan string
	StatusChan   chan statusMsg
	MessageChan  chan chatMsg
	EventChan    chan workflow.Event
	SetModelChan chan string
	ClearChan    chan struct{}
	CommandChan  chan UICommand
	ReadyChan    chan struct{} // Signals when UI is ready to accept requests
}

// NewUIChannels creates a new UIChannels struct with default buffers
func NewUIChannels() *UIChannels {
	return &UIChannels{
		InputReq:     make(chan inputRequest),
		InputResp:    make(chan string),
		StatusChan:   make(chan statusMsg, 10),
		MessageChan:  make(chan chatMsg, 10),
		EventChan:    make(chan workflow.Event, 64),
		SetModelChan: make(chan string, 1),
		ClearChan:    make(chan struct{}, 1),
		CommandChan:  make(chan UICommand, 10),
		ReadyChan:    make(chan struct{}),
	}
}

// NewUI creates a new Bubble Tea UI
func NewUI(
	cfg config.UIConfig,
	channels *UIChannels,
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
) *UI {
	views.ApplyPalette(views.Palette{
		Primary: cfg.ColorPrimary,
		User:    cfg.ColorUser,
		Tool:    cfg.ColorTool,
		Error:   cfg.ColorError,
		Muted:   cfg.ColorMuted,
	})

	ui := &UI{
		inputReq:     channels.InputReq,
		inputResp:    channels.InputResp,
		statusChan:   channels.StatusChan,
		messageChan:  channels.MessageChan,
		eventChan:    channels.EventChan,
		setModelChan: channels.SetModelChan,
		clearChan:    channels.ClearChan,
		commandChan:  channels.CommandChan,
		readyChan:    channels.ReadyChan,
	}

	model := newBubbleTeaModel(
		channels,
		renderer,
		spinnerFactory,
		time.Duration(cfg.TickIntervalMs)*time.Millisecond,
	)

	ui.program = tea.NewProgram(model, tea.WithAltScreen())

	return ui
}

// Start starts the UI program
func (u *UI) Start() error {
	_, err := u.program.Run()
	return err
}

// ReadInput waits for the user to submit a message
func (u *UI) ReadInput(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case u.inputReq <- inputRequest{Prompt: prompt}:
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case response := <-u.inputResp:
			return response, nil
		}
	}
}

// WriteStatus updates the status bar
func (u *UI) WriteStatus(phase string, message string) {
	select {
	case u.statusChan <- statusMsg{Phase: phase, Message: message}:
	default:
		// Drop if channel is full
	}
}

// WriteMessage adds an informational message to the history
func (u *UI) WriteMessage(content string) {
	u.writeChat(chatMsg{Role: models.RoleSystem, Content: content})
}

// WriteError adds an error message to the history
func (u *UI) WriteError(content string) {
	u.writeChat(chatMsg{Role: models.RoleError, Content: content})
}

func (u *UI) writeChat(m chatMsg) {
	select {
	case u.messageChan <- m:
	default:
		// Drop if channel is full
	}
}

// SetModel shows the active model in the status bar
func (u *UI) SetModel(model string) {
	select {
	case u.setModelChan <- model:
	default:
		// Drop if channel is full
	}
}

// ClearHistory empties the chat history and artifact list
func (u *UI) ClearHistory() {
	select {
	case u.clearChan <- struct{}{}:
	default:
		// A clear is already queued
	}
}

// Events returns the channel turn events are delivered on
func (u *UI) Events() chan<- workflow.Event {
	return u.eventChan
}

// Commands returns the command channel
func (u *UI) Commands() <-chan UICommand {
	return u.commandChan
}

// Ready returns a channel that is closed when the UI is ready to accept requests
func (u *UI) Ready() <-chan struct{} {
	return u.readyChan
}

var _ UserInterface = (*UI)(nil)

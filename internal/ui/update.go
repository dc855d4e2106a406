package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Cyclone1070/termchat/internal/ui/models"
	"github.com/Cyclone1070/termchat/internal/ui/services"
	"github.com/Cyclone1070/termchat/internal/ui/views"
	"github.com/Cyclone1070/termchat/internal/workflow"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const helpText = `Available commands:
- /artifacts - List artifacts of this session
- /open [N] - Open artifact N (default: latest)
- /copy [N] - Copy artifact N to the clipboard (default: latest)
- /retry - Retry the last message that got no reply
- /reset - Start a new conversation
- /quit - Exit
Keys: Enter send, Tab open latest artifact, Esc cancel turn, ↑/↓/PgUp/PgDn scroll, Ctrl+C quit`

// reserved lines below the chat: bordered input (3) and status (1)
const chromeHeight = 5

// BubbleTeaModel implements tea.Model
type BubbleTeaModel struct {
	state models.State

	// Dependencies
	renderer     services.MarkdownRenderer
	tickInterval time.Duration

	// Channels for communication with the application
	inputReq     <-chan inputRequest
	inputResp    chan<- string
	statusChan   <-chan statusMsg
	messageChan  <-chan chatMsg
	eventChan    <-chan workflow.Event
	setModelChan <-chan string
	clearChan    <-chan struct{}

	// UI -> Application
	commandChan chan<- UICommand

	// Ready signal
	readyChan chan<- struct{}
}

// View renders the UI
func (m BubbleTeaModel) View() string {
	return views.RenderRoot(m.state)
}

// SpinnerFactory creates a new spinner
type SpinnerFactory func() spinner.Model

// newBubbleTeaModel creates a new Bubble Tea model
func newBubbleTeaModel(
	channels *UIChannels,
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
	tickInterval time.Duration,
) BubbleTeaModel {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "› "
	ti.Focus()

	vp := viewport.New(80, 20)

	if tickInterval <= 0 {
		tickInterval = 100 * time.Millisecond
	}

	return BubbleTeaModel{
		state: models.State{
			Input:       ti,
			Viewport:    vp,
			Spinner:     spinnerFactory(),
			Messages:    []models.Message{},
			StatusPhase: models.PhaseReady,
		},
		renderer:     renderer,
		tickInterval: tickInterval,
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
}

// Internal messages
type tickMsg time.Time
type inputRequestMsg inputRequest
type statusUpdateMsg statusMsg
type chatReceivedMsg chatMsg
type eventReceivedMsg struct{ event workflow.Event }
type setModelMsg string
type clearHistoryMsg struct{}

// Init initializes the model
func (m BubbleTeaModel) Init() tea.Cmd {
	// Signal that UI is ready
	if m.readyChan != nil {
		close(m.readyChan)
	}

	return tea.Batch(
		textinput.Blink,
		m.state.Spinner.Tick,
		m.tick(),
		listenForInputRequests(m.inputReq),
		listenForStatus(m.statusChan),
		listenForChat(m.messageChan),
		listenForEvents(m.eventChan),
		listenForModel(m.setModelChan),
		listenForClear(m.clearChan),
	)
}

// Update handles messages
func (m BubbleTeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.state.Viewport.Width = msg.Width
		m.state.Viewport.Height = max(msg.Height-chromeHeight, 1)
		m.state.Input.Width = max(msg.Width-8, 10)
		m.updateViewport()
		return m, nil

	case tickMsg:
		// Update dot animation
		m.state.DotCount = (m.state.DotCount + 1) % 4
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.state.Spinner, cmd = m.state.Spinner.Update(msg)
		return m, cmd

	case inputRequestMsg:
		m.state.CanSubmit = true
		if msg.Prompt != "" {
			m.state.Input.Placeholder = msg.Prompt
		}
		return m, listenForInputRequests(m.inputReq)

	case statusUpdateMsg:
		m.state.StatusPhase = msg.Phase
		m.state.StatusMessage = msg.Message
		return m, listenForStatus(m.statusChan)

	case chatReceivedMsg:
		m.appendMessage(msg.Role, msg.Content)
		return m, listenForChat(m.messageChan)

	case eventReceivedMsg:
		m.handleEvent(msg.event)
		return m, listenForEvents(m.eventChan)

	case setModelMsg:
		m.state.CurrentModel = string(msg)
		return m, listenForModel(m.setModelChan)

	case clearHistoryMsg:
		m.state.Messages = []models.Message{}
		m.state.Draft = ""
		m.state.Artifacts = nil
		m.state.ShowArtifacts = false
		m.updateViewport()
		return m, listenForClear(m.clearChan)
	}

	// Update input
	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m, cmd
}

// handleEvent applies a turn event to the state
func (m *BubbleTeaModel) handleEvent(e workflow.Event) {
	switch e := e.(type) {
	case workflow.ThinkingEvent:
		m.state.Busy = true
		m.state.StatusPhase = models.PhaseThinking
		m.state.StatusMessage = ""

	case workflow.TextDeltaEvent:
		m.state.Draft += e.Text
		m.updateViewport()

	case workflow.TextEvent:
		m.state.Draft = ""
		m.appendMessage(models.RoleAssistant, e.Text)

	case workflow.ToolStartEvent:
		m.state.Draft = ""
		m.state.StatusPhase = models.PhaseExecuting
		m.state.StatusMessage = services.FormatToolDescription(e.ToolName, e.RequestDisplay)

	case workflow.ToolEndEvent:
		m.appendMessage(models.RoleTool, services.FormatToolResult(e.ToolName, e.Output, e.IsError))

	case workflow.ArtifactEvent:
		m.state.Artifacts = append(m.state.Artifacts, e.Artifact)
		n := len(m.state.Artifacts)
		m.appendMessage(models.RoleSystem, fmt.Sprintf("◆ %s  (Tab or /open %d to view)", views.ArtifactLine(n, e.Artifact), n))

	case workflow.DoneEvent:
		m.state.Busy = false
		if m.state.Draft != "" {
			m.state.Draft = ""
			m.updateViewport()
		}
	}
}

// handleKeyPress handles keyboard input
func (m BubbleTeaModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle artifact popup navigation
	if m.state.ShowArtifacts {
		switch msg.String() {
		case "up", "k":
			if m.state.ArtifactIndex > 0 {
				m.state.ArtifactIndex--
			}
		case "down", "j":
			if m.state.ArtifactIndex < len(m.state.Artifacts)-1 {
				m.state.ArtifactIndex++
			}
		case "enter":
			m.sendArtifactCommand(CommandOpenArtifact, m.state.ArtifactIndex)
			m.state.ShowArtifacts = false
		case "c":
			m.sendArtifactCommand(CommandCopyArtifact, m.state.ArtifactIndex)
			m.state.ShowArtifacts = false
		case "esc":
			m.state.ShowArtifacts = false
		case "ctrl+c", "ctrl+q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		return m, tea.Quit

	case "esc":
		if m.state.Busy {
			m.commandChan <- UICommand{Type: CommandCancel}
			m.state.StatusMessage = "Cancelling..."
		}
		return m, nil

	case "tab":
		if len(m.state.Artifacts) == 0 {
			m.state.StatusMessage = "No artifacts yet"
			return m, nil
		}
		m.sendArtifactCommand(CommandOpenArtifact, len(m.state.Artifacts)-1)
		return m, nil

	case "up":
		m.state.Viewport.ScrollUp(1)
		return m, nil
	case "down":
		m.state.Viewport.ScrollDown(1)
		return m, nil
	case "pgup":
		m.state.Viewport.PageUp()
		return m, nil
	case "pgdown":
		m.state.Viewport.PageDown()
		return m, nil

	case "enter":
		input := strings.TrimSpace(m.state.Input.Value())
		if input == "" {
			return m, nil
		}

		// Check for commands
		if strings.HasPrefix(input, "/") {
			m.state.Input.SetValue("")
			return m.handleCommand(input)
		}

		if !m.state.CanSubmit {
			m.state.StatusMessage = "A turn is in progress (Esc to cancel)"
			return m, nil
		}

		m.appendMessage(models.RoleUser, input)

		// Send to the application
		m.inputResp <- input
		m.state.Input.SetValue("")
		m.state.CanSubmit = false
		return m, nil
	}

	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m, cmd
}

// handleCommand handles slash commands
func (m BubbleTeaModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "/help":
		m.appendMessage(models.RoleSystem, helpText)
	case "/artifacts":
		if len(m.state.Artifacts) == 0 {
			m.appendMessage(models.RoleSystem, "No artifacts yet.")
			break
		}
		m.state.ShowArtifacts = true
		m.state.ArtifactIndex = len(m.state.Artifacts) - 1
	case "/open", "/copy":
		idx, err := m.artifactArg(parts[1:])
		if err != nil {
			m.appendMessage(models.RoleError, err.Error())
			break
		}
		cmdType := CommandOpenArtifact
		if parts[0] == "/copy" {
			cmdType = CommandCopyArtifact
		}
		m.sendArtifactCommand(cmdType, idx)
	case "/retry":
		m.commandChan <- UICommand{Type: CommandRetry}
	case "/reset":
		m.commandChan <- UICommand{Type: CommandReset}
	case "/quit", "/exit":
		return m, tea.Quit
	default:
		m.appendMessage(models.RoleError, fmt.Sprintf("unknown command %s (try /help)", parts[0]))
	}

	return m, nil
}

// artifactArg resolves an optional 1-based artifact number to an index.
func (m BubbleTeaModel) artifactArg(args []string) (int, error) {
	n := len(m.state.Artifacts)
	if n == 0 {
		return 0, fmt.Errorf("no artifacts yet")
	}
	if len(args) == 0 {
		return n - 1, nil
	}
	num, err := strconv.Atoi(args[0])
	if err != nil || num < 1 || num > n {
		return 0, fmt.Errorf("invalid artifact number %q (1-%d)", args[0], n)
	}
	return num - 1, nil
}

func (m *BubbleTeaModel) sendArtifactCommand(cmdType string, idx int) {
	if idx < 0 || idx >= len(m.state.Artifacts) {
		return
	}
	a := m.state.Artifacts[idx]
	m.commandChan <- UICommand{
		Type:     cmdType,
		Args:     map[string]string{"number": strconv.Itoa(idx + 1)},
		Artifact: &a,
	}
}

func (m *BubbleTeaModel) appendMessage(role, content string) {
	m.state.Messages = append(m.state.Messages, models.Message{Role: role, Content: content})
	m.updateViewport()
}

// updateViewport updates the viewport content
func (m *BubbleTeaModel) updateViewport() {
	content := views.FormatChatContent(m.state.Messages, m.state.Draft, m.state.Width-4, m.renderer)
	m.state.Viewport.SetContent(content)
	m.state.Viewport.GotoBottom()
}

// Helper commands for listening to channels
func listenForInputRequests(ch <-chan inputRequest) tea.Cmd {
	return func() tea.Msg {
		return inputRequestMsg(<-ch)
	}
}

func listenForStatus(ch <-chan statusMsg) tea.Cmd {
	return func() tea.Msg {
		return statusUpdateMsg(<-ch)
	}
}

func listenForChat(ch <-chan chatMsg) tea.Cmd {
	return func() tea.Msg {
		return chatReceivedMsg(<-ch)
	}
}

func listenForEvents(ch <-chan workflow.Event) tea.Cmd {
	return func() tea.Msg {
		return eventReceivedMsg{event: <-ch}
	}
}

func listenForModel(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return setModelMsg(<-ch)
	}
}

func listenForClear(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return clearHistoryMsg{}
	}
}

func (m BubbleTeaModel) tick() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

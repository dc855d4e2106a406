package views

import "github.com/charmbracelet/lipgloss"

// Palette colors, overridable via ApplyPalette.
var (
	ColorPrimary = lipgloss.Color("63")
	ColorUser    = lipgloss.Color("39")
	ColorTool    = lipgloss.Color("214")
	ColorError   = lipgloss.Color("196")
	ColorMuted   = lipgloss.Color("241")
)

var (
	UserMessageStyle      lipgloss.Style
	AssistantMessageStyle lipgloss.Style
	ToolMessageStyle      lipgloss.Style
	SystemMessageStyle    lipgloss.Style
	ErrorMessageStyle     lipgloss.Style
	DraftMessageStyle     lipgloss.Style

	InputStyle lipgloss.Style
	PopupStyle lipgloss.Style

	StatusDefaultStyle   lipgloss.Style
	StatusThinkingStyle  lipgloss.Style
	StatusExecutingStyle lipgloss.Style
	StatusDoneStyle      lipgloss.Style
	StatusErrorStyle     lipgloss.Style
)

func init() {
	buildStyles()
}

// Palette is the set of configurable colors (ANSI 256 codes or hex).
type Palette struct {
	Primary string
	User    string
	Tool    string
	Error   string
	Muted   string
}

// ApplyPalette replaces the non-empty colors and rebuilds every style.
func ApplyPalette(p Palette) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&ColorPrimary, p.Primary)
	set(&ColorUser, p.User)
	set(&ColorTool, p.Tool)
	set(&ColorError, p.Error)
	set(&ColorMuted, p.Muted)
	buildStyles()
}

func buildStyles() {
	UserMessageStyle = lipgloss.NewStyle().Foreground(ColorUser).Bold(true)
	AssistantMessageStyle = lipgloss.NewStyle().PaddingLeft(1)
	ToolMessageStyle = lipgloss.NewStyle().Foreground(ColorTool).PaddingLeft(2)
	SystemMessageStyle = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	ErrorMessageStyle = lipgloss.NewStyle().Foreground(ColorError)
	DraftMessageStyle = lipgloss.NewStyle().Foreground(ColorMuted).PaddingLeft(1)

	InputStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(0, 1)
	PopupStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)

	StatusDefaultStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusThinkingStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	StatusExecutingStyle = lipgloss.NewStyle().Foreground(ColorTool)
	StatusDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StatusErrorStyle = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
}

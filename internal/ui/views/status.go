package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/termchat/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// RenderStatus renders the status bar
func RenderStatus(s models.State) string {
	var icon string
	var style lipgloss.Style

	switch s.StatusPhase {
	case models.PhaseExecuting:
		icon = s.Spinner.View()
		style = StatusExecutingStyle
	case models.PhaseDone:
		icon = "✔"
		style = StatusDoneStyle
	case models.PhaseError:
		icon = "✘"
		style = StatusErrorStyle
	case models.PhaseThinking:
		icon = s.Spinner.View()
		style = StatusThinkingStyle
		// Animate the dots
		dots := strings.Repeat(".", s.DotCount)
		return withModel(style.Render(fmt.Sprintf("%s Generating%s", icon, dots)), s)
	default:
		style = StatusDefaultStyle
	}

	status := "Ready"
	if s.StatusMessage != "" {
		status = strings.TrimSpace(fmt.Sprintf("%s %s", icon, s.StatusMessage))
	} else if s.StatusPhase != models.PhaseReady && s.StatusPhase != "" {
		status = icon
	}

	left := style.Render(status)
	if n := len(s.Artifacts); n > 0 {
		left += StatusDefaultStyle.Render(fmt.Sprintf("  ◆ %d artifact(s), Tab opens latest", n))
	}
	return withModel(left, s)
}

// withModel appends the model name, right-aligned when the width is known.
func withModel(left string, s models.State) string {
	if s.CurrentModel == "" {
		return left
	}
	right := StatusDefaultStyle.Render(s.CurrentModel)
	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

package views

import (
	"github.com/Cyclone1070/termchat/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// RenderRoot lays out the chat, input and status bar. While the artifact
// list is open it takes over the whole screen.
func RenderRoot(s models.State) string {
	if popup := RenderArtifactPopup(s); popup != "" {
		return lipgloss.Place(s.Width, s.Height, lipgloss.Center, lipgloss.Center, popup,
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(lipgloss.Color("0")),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, RenderChat(s), RenderInput(s), RenderStatus(s))
}

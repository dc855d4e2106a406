package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/termchat/internal/artifact"
	"github.com/Cyclone1070/termchat/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// RenderArtifactPopup renders the artifact selection popup
func RenderArtifactPopup(s models.State) string {
	if !s.ShowArtifacts || len(s.Artifacts) == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Artifacts:"))
	lines = append(lines, "")

	for i, a := range s.Artifacts {
		entry := ArtifactLine(i+1, a)
		if i == s.ArtifactIndex {
			// Highlight selected
			lines = append(lines, lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Render("▸ "+entry))
		} else {
			lines = append(lines, "  "+entry)
		}
	}

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Faint(true).Render("↑/↓: Navigate  Enter: Open  c: Copy  Esc: Close"))

	content := strings.Join(lines, "\n")
	return PopupStyle.Render(content)
}

// ArtifactLine describes an artifact as listed by /artifacts.
func ArtifactLine(number int, a artifact.Artifact) string {
	return fmt.Sprintf("%d. %s [%s]", number, a.Title, a.Kind)
}

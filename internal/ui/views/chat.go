package views

import (
	"strings"

	"github.com/Cyclone1070/termchat/internal/ui/models"
	"github.com/Cyclone1070/termchat/internal/ui/services"
)

// RenderChat renders the message history
func RenderChat(s models.State) string {
	if len(s.Messages) == 0 && s.Draft == "" {
		return SystemMessageStyle.Render("No messages yet. Type a message to start, or /help for commands.")
	}
	return s.Viewport.View()
}

// FormatChatContent formats the messages and any streaming draft for the viewport
func FormatChatContent(messages []models.Message, draft string, width int, renderer services.MarkdownRenderer) string {
	var lines []string
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			lines = append(lines, UserMessageStyle.Render("You: "+msg.Content))
		case models.RoleTool:
			lines = append(lines, ToolMessageStyle.Render(msg.Content))
		case models.RoleSystem:
			lines = append(lines, SystemMessageStyle.Render(msg.Content))
		case models.RoleError:
			lines = append(lines, ErrorMessageStyle.Render("Error: "+msg.Content))
		default:
			rendered, err := services.RenderMarkdown(msg.Content, width, renderer)
			if err != nil {
				// Fallback to plain text
				lines = append(lines, AssistantMessageStyle.Render("AI: "+msg.Content))
			} else {
				lines = append(lines, AssistantMessageStyle.Render(rendered))
			}
		}
		lines = append(lines, "") // Add spacing
	}
	if draft != "" {
		lines = append(lines, DraftMessageStyle.Width(max(width, 1)).Render(draft))
	}
	return strings.Join(lines, "\n")
}

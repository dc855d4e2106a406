package services

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const maxDescriptionLen = 60

// FormatToolDescription generates a user-friendly description from a tool
// name and its JSON-encoded arguments.
func FormatToolDescription(name string, argsJSON string) string {
	switch name {
	case "calculator":
		if expr := gjson.Get(argsJSON, "expression"); expr.Type == gjson.String {
			return fmt.Sprintf("calculator %s", truncate(expr.String()))
		}
	case "weather":
		if loc := gjson.Get(argsJSON, "location"); loc.Type == gjson.String {
			return fmt.Sprintf("weather '%s'", truncate(loc.String()))
		}
	}
	if argsJSON != "" && gjson.Valid(argsJSON) {
		return fmt.Sprintf("%s %s", name, truncate(argsJSON))
	}
	return name
}

// FormatToolResult summarizes a finished tool call for the chat history.
func FormatToolResult(name, output string, isError bool) string {
	icon := "✔"
	if isError {
		icon = "✘"
	}
	output = strings.TrimSpace(output)
	if strings.Contains(output, "\n") {
		return fmt.Sprintf("%s %s\n%s", icon, name, output)
	}
	return fmt.Sprintf("%s %s → %s", icon, name, output)
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxDescriptionLen {
		return s
	}
	return string(r[:maxDescriptionLen-1]) + "…"
}

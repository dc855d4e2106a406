// Package artifact finds self-contained renderable blocks in model replies
// and hands them off to files, the system viewer or the clipboard.
package artifact

import "strings"

// Kind classifies an artifact by how it is handed off.
type Kind string

const (
	KindHTML      Kind = "html"
	KindComponent Kind = "reusable_component"
	KindScript    Kind = "script"
)

// DefaultTitle is used when the marker carries no title.
const DefaultTitle = "Untitled"

// Artifact is one block extracted from an assistant message.
type Artifact struct {
	Kind        Kind
	ContentType string
	Title       string
	Identifier  string
	// Content is what gets handed off. Components are wrapped in the browser harness.
	Content string
	// Source is the raw block body as the model wrote it.
	Source string
	// Index is the position among recognized artifacts of the source message.
	Index int
}

// Extension is the file extension used when the artifact is persisted.
func (a Artifact) Extension() string {
	switch a.Kind {
	case KindHTML, KindComponent:
		return ".html"
	case KindScript:
		if strings.Contains(strings.ToLower(a.ContentType), "typescript") {
			return ".ts"
		}
		return ".js"
	}
	return ".txt"
}

// classify maps a marker's declared content type to a Kind.
func classify(contentType string) (Kind, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case ct == "text/html":
		return KindHTML, true
	case strings.HasPrefix(ct, "application/vnd.") && strings.HasSuffix(ct, ".react"):
		return KindComponent, true
	case ct == "text/javascript", ct == "application/javascript", ct == "text/typescript":
		return KindScript, true
	}
	return "", false
}

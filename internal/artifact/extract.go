package artifact

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

const (
	openMarker  = "<artifact"
	closeMarker = "</artifact>"
)

// AnomalyKind describes a marker the extractor could not turn into an artifact.
type AnomalyKind string

const (
	AnomalyUnterminated AnomalyKind = "unterminated"
	AnomalyUnclassified AnomalyKind = "unclassified"
)

// Anomaly records a marker left inline. Anomalies are informational only.
type Anomaly struct {
	Kind        AnomalyKind
	Offset      int
	ContentType string
}

// Result is the full output of a scan.
type Result struct {
	Text      string
	Artifacts []Artifact
	Anomalies []Anomaly
}

// Placeholder is the display text that replaces an extracted block.
func Placeholder(index int, title string) string {
	return fmt.Sprintf("[artifact #%d: %s]", index, title)
}

// Extract returns text with recognized artifact blocks replaced by placeholders,
// plus the artifacts in order of appearance.
func Extract(text string) (string, []Artifact) {
	r := Scan(text)
	return r.Text, r.Artifacts
}

// Scan is Extract that also reports markers it left untouched.
// It never fails: anything it cannot interpret stays in the text verbatim.
func Scan(text string) Result {
	var (
		out    strings.Builder
		result Result
		pos    int
	)

	for pos < len(text) {
		start := findOpen(text, pos)
		if start < 0 {
			break
		}
		attrs, tagLen, ok := parseOpenTag(text[start:])
		if !ok {
			result.Anomalies = append(result.Anomalies, Anomaly{Kind: AnomalyUnterminated, Offset: start})
			break
		}
		bodyStart := start + tagLen

		closeRel := strings.Index(text[bodyStart:], closeMarker)
		if closeRel < 0 {
			result.Anomalies = append(result.Anomalies, Anomaly{Kind: AnomalyUnterminated, Offset: start, ContentType: attrs["type"]})
			break
		}
		bodyEnd := bodyStart + closeRel
		blockEnd := bodyEnd + len(closeMarker)

		// An opener inside the body means this one was never closed.
		if inner := findOpen(text, bodyStart); inner >= 0 && inner < bodyEnd {
			result.Anomalies = append(result.Anomalies, Anomaly{Kind: AnomalyUnterminated, Offset: start, ContentType: attrs["type"]})
			out.WriteString(text[pos:inner])
			pos = inner
			continue
		}

		kind, ok := classify(attrs["type"])
		if !ok {
			result.Anomalies = append(result.Anomalies, Anomaly{Kind: AnomalyUnclassified, Offset: start, ContentType: attrs["type"]})
			out.WriteString(text[pos:blockEnd])
			pos = blockEnd
			continue
		}

		a := Artifact{
			Kind:        kind,
			ContentType: attrs["type"],
			Title:       attrs["title"],
			Identifier:  attrs["identifier"],
			Source:      trimBody(text[bodyStart:bodyEnd]),
			Index:       len(result.Artifacts),
		}
		if a.Title == "" {
			a.Title = DefaultTitle
		}
		if a.Identifier == "" {
			a.Identifier = uuid.NewString()
		}
		a.Content = a.Source
		if kind == KindComponent {
			a.Content = WrapComponent(a.Title, a.Source)
		}
		result.Artifacts = append(result.Artifacts, a)

		out.WriteString(text[pos:start])
		out.WriteString(Placeholder(a.Index, a.Title))
		pos = blockEnd
	}

	out.WriteString(text[pos:])
	result.Text = out.String()
	return result
}

// findOpen returns the offset of the next "<artifact" opening tag at or after pos.
// "<artifacts>" and similar words are skipped.
func findOpen(text string, pos int) int {
	for {
		i := strings.Index(text[pos:], openMarker)
		if i < 0 {
			return -1
		}
		at := pos + i
		next := at + len(openMarker)
		if next < len(text) {
			switch text[next] {
			case ' ', '\t', '\n', '\r', '>', '/':
				return at
			}
		}
		pos = next
	}
}

// parseOpenTag tokenizes the opening tag at the start of s.
// It returns the tag's attributes and its length in bytes.
func parseOpenTag(s string) (map[string]string, int, bool) {
	z := html.NewTokenizer(strings.NewReader(s))
	tt := z.Next()
	if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
		return nil, 0, false
	}
	tagLen := len(z.Raw())

	attrs := make(map[string]string)
	if _, hasAttr := z.TagName(); !hasAttr {
		return attrs, tagLen, true
	}
	for {
		key, val, more := z.TagAttr()
		attrs[string(key)] = string(val)
		if !more {
			break
		}
	}
	return attrs, tagLen, true
}

// trimBody drops the line breaks that separate the body from its markers.
func trimBody(body string) string {
	body = strings.TrimPrefix(body, "\r\n")
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimSuffix(body, "\n")
	body = strings.TrimSuffix(body, "\r")
	return body
}

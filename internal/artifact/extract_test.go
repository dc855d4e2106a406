package artifact

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_NoArtifacts_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"Here are <artifacts> in prose and a <b>tag</b>",
		"multi\nline\n\ntext with </artifact> stray close",
	}
	for _, in := range inputs {
		text, artifacts := Extract(in)
		assert.Equal(t, in, text)
		assert.Empty(t, artifacts)

		again, _ := Extract(text)
		assert.Equal(t, text, again)
	}
}

func TestExtract_HTMLWithTrailingProse(t *testing.T) {
	in := "Here you go:\n<artifact identifier=\"hello\" type=\"text/html\" title=\"Hello\">\n<h1>Hi</h1>\n</artifact>\nLet me know if you want changes."

	text, artifacts := Extract(in)

	require.Len(t, artifacts, 1)
	a := artifacts[0]
	assert.Equal(t, KindHTML, a.Kind)
	assert.Equal(t, 0, a.Index)
	assert.Equal(t, "Hello", a.Title)
	assert.Equal(t, "hello", a.Identifier)
	assert.Equal(t, "<h1>Hi</h1>", a.Content)
	assert.Equal(t, "Here you go:\n[artifact #0: Hello]\nLet me know if you want changes.", text)
}

func TestExtract_OrderPreserved(t *testing.T) {
	in := strings.Join([]string{
		`<artifact type="text/html" title="Page">`, `<p>page</p>`, `</artifact>`,
		`between`,
		`<artifact type="application/vnd.ant.react" title="Widget">`, `function App() { return null }`, `</artifact>`,
		`<artifact type="text/javascript" title="Script">`, `console.log(1)`, `</artifact>`,
	}, "\n")

	text, artifacts := Extract(in)

	require.Len(t, artifacts, 3)
	assert.Equal(t, []Kind{KindHTML, KindComponent, KindScript},
		[]Kind{artifacts[0].Kind, artifacts[1].Kind, artifacts[2].Kind})
	for i, a := range artifacts {
		assert.Equal(t, i, a.Index)
	}
	assert.Equal(t, "[artifact #0: Page]\nbetween\n[artifact #1: Widget]\n[artifact #2: Script]", text)
}

func TestExtract_ComponentIsWrapped(t *testing.T) {
	in := `<artifact type="application/vnd.ant.react" title="Counter">function App() { return 1 }</artifact>`

	_, artifacts := Extract(in)

	require.Len(t, artifacts, 1)
	a := artifacts[0]
	assert.Equal(t, "function App() { return 1 }", a.Source)
	assert.Contains(t, a.Content, "<title>Counter</title>")
	assert.Contains(t, a.Content, "https://unpkg.com/react@18/umd/react.development.js")
	assert.Contains(t, a.Content, "https://unpkg.com/react-dom@18/umd/react-dom.development.js")
	assert.Contains(t, a.Content, "https://unpkg.com/@babel/standalone/babel.min.js")
	assert.Contains(t, a.Content, "https://cdn.tailwindcss.com")
	assert.Contains(t, a.Content, `<div id="root"></div>`)
	assert.Contains(t, a.Content, "function App() { return 1 }")
	assert.Contains(t, a.Content, "'Component not found'")
}

func TestExtract_Defaults(t *testing.T) {
	_, artifacts := Extract(`<artifact type="text/typescript">let x: number = 1</artifact>`)

	require.Len(t, artifacts, 1)
	a := artifacts[0]
	assert.Equal(t, DefaultTitle, a.Title)
	_, err := uuid.Parse(a.Identifier)
	assert.NoError(t, err)
	assert.Equal(t, KindScript, a.Kind)
	assert.Equal(t, ".ts", a.Extension())
}

func TestExtract_AttributeQuoting(t *testing.T) {
	_, artifacts := Extract(`<artifact title='A > B &amp; C' type=text/html>x</artifact>`)

	require.Len(t, artifacts, 1)
	assert.Equal(t, "A > B & C", artifacts[0].Title)
	assert.Equal(t, "x", artifacts[0].Content)
}

func TestScan_UnclassifiedLeftInline(t *testing.T) {
	in := "before <artifact type=\"text/markdown\" title=\"Notes\">\n# hi\n</artifact> after"

	r := Scan(in)

	assert.Equal(t, in, r.Text)
	assert.Empty(t, r.Artifacts)
	require.Len(t, r.Anomalies, 1)
	assert.Equal(t, AnomalyUnclassified, r.Anomalies[0].Kind)
	assert.Equal(t, "text/markdown", r.Anomalies[0].ContentType)
}

func TestScan_UnterminatedDegradesToText(t *testing.T) {
	tests := []string{
		"start <artifact type=\"text/html\" title=\"x\">\n<p>never closed",
		"start <artifact type=\"text/html",
	}
	for _, in := range tests {
		r := Scan(in)

		assert.Equal(t, in, r.Text)
		assert.Empty(t, r.Artifacts)
		require.Len(t, r.Anomalies, 1)
		assert.Equal(t, AnomalyUnterminated, r.Anomalies[0].Kind)
		assert.Equal(t, 6, r.Anomalies[0].Offset)
	}
}

func TestScan_RecognizedBeforeUnterminated(t *testing.T) {
	in := "<artifact type=\"text/html\" title=\"One\">1</artifact> then <artifact type=\"text/html\">oops"

	r := Scan(in)

	require.Len(t, r.Artifacts, 1)
	assert.Equal(t, "[artifact #0: One] then <artifact type=\"text/html\">oops", r.Text)
	require.Len(t, r.Anomalies, 1)
}

func TestScan_UnterminatedDoesNotSwallowNextArtifact(t *testing.T) {
	in := "a <artifact type=\"text/html\">oops <artifact type=\"text/html\" title=\"Real\">body</artifact> tail"

	r := Scan(in)

	require.Len(t, r.Artifacts, 1)
	assert.Equal(t, "Real", r.Artifacts[0].Title)
	assert.Equal(t, "body", r.Artifacts[0].Source)
	assert.Equal(t, "a <artifact type=\"text/html\">oops [artifact #0: Real] tail", r.Text)
	require.Len(t, r.Anomalies, 1)
	assert.Equal(t, AnomalyUnterminated, r.Anomalies[0].Kind)
	assert.Equal(t, 2, r.Anomalies[0].Offset)
}

func TestArtifact_Extension(t *testing.T) {
	assert.Equal(t, ".html", Artifact{Kind: KindHTML}.Extension())
	assert.Equal(t, ".html", Artifact{Kind: KindComponent}.Extension())
	assert.Equal(t, ".js", Artifact{Kind: KindScript, ContentType: "text/javascript"}.Extension())
	assert.Equal(t, ".ts", Artifact{Kind: KindScript, ContentType: "text/typescript"}.Extension())
}

package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Cyclone1070/termchat/internal/provider"
	"github.com/Cyclone1070/termchat/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	method string
	url    string
	header http.Header
	body   []byte
}

type fakeTransport struct {
	respStatus  int
	respBody    []byte
	contentType string
	err         error
	captured    *capture
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if f.captured != nil {
		f.captured.method = req.Method
		f.captured.url = req.URL.String()
		f.captured.header = req.Header.Clone()
		f.captured.body = b
	}
	if f.err != nil {
		return nil, f.err
	}
	contentType := f.contentType
	if contentType == "" {
		contentType = "application/json"
	}
	resp := &http.Response{
		StatusCode: f.respStatus,
		Body:       io.NopCloser(bytes.NewReader(f.respBody)),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", contentType)
	return resp, nil
}

func newTestProvider(t *testing.T, rt http.RoundTripper, stream bool) *Provider {
	t.Helper()
	p, err := New(Options{
		APIKey:     "test-key",
		BaseURL:    "https://api.test.local",
		HTTPClient: &http.Client{Transport: rt},
		Stream:     stream,
	})
	require.NoError(t, err)
	return p
}

const toolUseReply = `{
  "id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-20250514",
  "content": [
    {"type": "text", "text": "Let me calculate that."},
    {"type": "tool_use", "id": "toolu_1", "name": "calculator", "input": {"expression": "15 * 23"}}
  ],
  "stop_reason": "tool_use",
  "usage": {"input_tokens": 12, "output_tokens": 7}
}`

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, provider.ErrMissingAPIKey)
}

func TestGenerate_SendsConversation(t *testing.T) {
	capReq := &capture{}
	p := newTestProvider(t, &fakeTransport{respStatus: 200, respBody: []byte(toolUseReply), captured: capReq}, false)

	_, err := p.Generate(context.Background(), &provider.Request{
		Model:     DefaultModel,
		System:    "be brief",
		MaxTokens: 4000,
		Messages: []provider.Message{
			provider.NewUserMessage("What's 2+2?"),
			{Role: provider.RoleAssistant, Content: []provider.ContentBlock{
				provider.ToolUseBlock{ID: "toolu_0", Name: "calculator", Input: map[string]any{"expression": "2+2"}},
			}},
			provider.NewToolMessage([]provider.ToolResultBlock{{ToolUseID: "toolu_0", Output: "4"}}),
		},
		Tools: []tool.Declaration{{
			Name:        "calculator",
			Description: "Perform mathematical calculations",
			Parameters: tool.ObjectSchema(map[string]*tool.Schema{
				"expression": tool.StringProperty("Mathematical expression to evaluate"),
			}, "expression"),
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, capReq.method)
	assert.True(t, strings.HasSuffix(capReq.url, "/v1/messages"), capReq.url)
	assert.Equal(t, "test-key", capReq.header.Get("X-Api-Key"))

	var body struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type      string          `json:"type"`
				Text      string          `json:"text,omitempty"`
				ID        string          `json:"id,omitempty"`
				Name      string          `json:"name,omitempty"`
				Input     json.RawMessage `json:"input,omitempty"`
				ToolUseID string          `json:"tool_use_id,omitempty"`
			} `json:"content"`
		} `json:"messages"`
		Tools []struct {
			Name        string `json:"name"`
			InputSchema struct {
				Type       string                     `json:"type"`
				Properties map[string]json.RawMessage `json:"properties"`
				Required   []string                   `json:"required"`
			} `json:"input_schema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(capReq.body, &body))

	assert.Equal(t, DefaultModel, body.Model)
	assert.Equal(t, 4000, body.MaxTokens)
	require.Len(t, body.System, 1)
	assert.Equal(t, "be brief", body.System[0].Text)

	require.Len(t, body.Messages, 3)
	assert.Equal(t, "user", body.Messages[0].Role)
	assert.Equal(t, "assistant", body.Messages[1].Role)
	assert.Equal(t, "tool_use", body.Messages[1].Content[0].Type)
	assert.JSONEq(t, `{"expression":"2+2"}`, string(body.Messages[1].Content[0].Input))
	assert.Equal(t, "user", body.Messages[2].Role)
	assert.Equal(t, "tool_result", body.Messages[2].Content[0].Type)
	assert.Equal(t, "toolu_0", body.Messages[2].Content[0].ToolUseID)

	require.Len(t, body.Tools, 1)
	assert.Equal(t, "calculator", body.Tools[0].Name)
	assert.Equal(t, "object", body.Tools[0].InputSchema.Type)
	assert.Equal(t, []string{"expression"}, body.Tools[0].InputSchema.Required)
	assert.Contains(t, body.Tools[0].InputSchema.Properties, "expression")
}

func TestGenerate_ParsesToolUse(t *testing.T) {
	p := newTestProvider(t, &fakeTransport{respStatus: 200, respBody: []byte(toolUseReply)}, false)

	resp, err := p.Generate(context.Background(), &provider.Request{
		Model: DefaultModel, MaxTokens: 100, Messages: []provider.Message{provider.NewUserMessage("What's 15 * 23?")},
	})
	require.NoError(t, err)

	assert.Equal(t, provider.StopReasonToolUse, resp.StopReason)
	assert.Equal(t, provider.Usage{InputTokens: 12, OutputTokens: 7}, resp.Usage)
	require.Len(t, resp.Content, 2)
	assert.Equal(t, provider.TextBlock{Text: "Let me calculate that."}, resp.Content[0])
	assert.Equal(t, provider.ToolUseBlock{
		ID:    "toolu_1",
		Name:  "calculator",
		Input: map[string]any{"expression": "15 * 23"},
	}, resp.Content[1])
}

func TestGenerate_MapsHTTPErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     provider.ErrorCode
		sentinel error
	}{
		{"unauthorized", 401, provider.ErrorCodeAuth, provider.ErrAuthentication},
		{"bad request", 400, provider.ErrorCodeInvalidRequest, provider.ErrInvalidRequest},
		{"rate limited", 429, provider.ErrorCodeRateLimit, provider.ErrRateLimit},
		{"overloaded", 529, provider.ErrorCodeUnavailable, provider.ErrServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := []byte(`{"type":"error","error":{"type":"some_error","message":"nope"}}`)
			p := newTestProvider(t, &fakeTransport{respStatus: tt.status, respBody: body}, false)

			_, err := p.Generate(context.Background(), &provider.Request{
				Model: DefaultModel, MaxTokens: 10, Messages: []provider.Message{provider.NewUserMessage("hi")},
			})

			var pe *provider.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.code, pe.Code)
			assert.Equal(t, tt.status, pe.StatusCode)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestGenerate_NetworkError(t *testing.T) {
	p := newTestProvider(t, &fakeTransport{err: errors.New("dial tcp: connection refused")}, false)

	_, err := p.Generate(context.Background(), &provider.Request{
		Model: DefaultModel, MaxTokens: 10, Messages: []provider.Message{provider.NewUserMessage("hi")},
	})

	assert.ErrorIs(t, err, provider.ErrNetwork)
}

const streamReply = "event: message_start\n" +
	`data: {"type":"message_start","message":{"id":"msg_2","type":"message","role":"assistant","model":"claude-sonnet-4-20250514","content":[],"stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":5,"output_tokens":1}}}` + "\n\n" +
	"event: content_block_start\n" +
	`data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}` + "\n\n" +
	"event: content_block_delta\n" +
	`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}` + "\n\n" +
	"event: content_block_delta\n" +
	`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" world"}}` + "\n\n" +
	"event: content_block_stop\n" +
	`data: {"type":"content_block_stop","index":0}` + "\n\n" +
	"event: message_delta\n" +
	`data: {"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":3}}` + "\n\n" +
	"event: message_stop\n" +
	`data: {"type":"message_stop"}` + "\n\n"

func TestGenerate_Streaming(t *testing.T) {
	p := newTestProvider(t, &fakeTransport{
		respStatus:  200,
		respBody:    []byte(streamReply),
		contentType: "text/event-stream",
	}, true)

	var deltas []string
	resp, err := p.Generate(context.Background(), &provider.Request{
		Model: DefaultModel, MaxTokens: 10, Messages: []provider.Message{provider.NewUserMessage("hi")},
		OnText: func(s string) { deltas = append(deltas, s) },
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Hello", " world"}, deltas)
	assert.Equal(t, provider.StopReasonEndTurn, resp.StopReason)
	require.Len(t, resp.Content, 1)
	assert.Equal(t, provider.TextBlock{Text: "Hello world"}, resp.Content[0])
}

const streamToolUseReply = "event: message_start\n" +
	`data: {"type":"message_start","message":{"id":"msg_3","type":"message","role":"assistant","model":"claude-sonnet-4-20250514","content":[],"stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":9,"output_tokens":1}}}` + "\n\n" +
	"event: content_block_start\n" +
	`data: {"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_2","name":"calculator","input":{}}}` + "\n\n" +
	"event: content_block_delta\n" +
	`data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"expression\":"}}` + "\n\n" +
	"event: content_block_delta\n" +
	`data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"\"15*23\"}"}}` + "\n\n" +
	"event: content_block_stop\n" +
	`data: {"type":"content_block_stop","index":0}` + "\n\n" +
	"event: message_delta\n" +
	`data: {"type":"message_delta","delta":{"stop_reason":"tool_use","stop_sequence":null},"usage":{"output_tokens":6}}` + "\n\n" +
	"event: message_stop\n" +
	`data: {"type":"message_stop"}` + "\n\n"

func TestGenerate_StreamingToolUse(t *testing.T) {
	p := newTestProvider(t, &fakeTransport{
		respStatus:  200,
		respBody:    []byte(streamToolUseReply),
		contentType: "text/event-stream",
	}, true)

	var deltas []string
	resp, err := p.Generate(context.Background(), &provider.Request{
		Model: DefaultModel, MaxTokens: 10, Messages: []provider.Message{provider.NewUserMessage("What's 15*23?")},
		OnText: func(s string) { deltas = append(deltas, s) },
	})
	require.NoError(t, err)

	assert.Empty(t, deltas)
	assert.Equal(t, provider.StopReasonToolUse, resp.StopReason)
	require.Len(t, resp.Content, 1)
	assert.Equal(t, provider.ToolUseBlock{
		ID:    "toolu_2",
		Name:  "calculator",
		Input: map[string]any{"expression": "15*23"},
	}, resp.Content[0])
}

func TestToMessages_RejectsUnknownRole(t *testing.T) {
	_, err := toMessages([]provider.Message{{Role: "system", Content: []provider.ContentBlock{provider.TextBlock{Text: "x"}}}})
	assert.Error(t, err)
}

func TestDecodeInput(t *testing.T) {
	in, err := decodeInput("")
	require.NoError(t, err)
	assert.Empty(t, in)

	in, err = decodeInput(`{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, in)

	_, err = decodeInput(`[1,2]`)
	assert.Error(t, err)
}

package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Cyclone1070/termchat/internal/provider"
	"github.com/Cyclone1070/termchat/internal/tool"
	"github.com/anthropics/anthropic-sdk-go"
)

// toParams converts a provider request into Messages API parameters.
func toParams(req *provider.Request) (anthropic.MessageNewParams, error) {
	msgs, err := toMessages(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages:  msgs,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = toTools(req.Tools)
	}
	return params, nil
}

// toMessages maps the domain roles onto the API's two roles.
// Tool messages travel as user messages carrying tool_result blocks.
func toMessages(msgs []provider.Message) ([]anthropic.MessageParam, error) {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for i, msg := range msgs {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
		for _, b := range msg.Content {
			switch v := b.(type) {
			case provider.TextBlock:
				blocks = append(blocks, anthropic.NewTextBlock(v.Text))
			case provider.ToolUseBlock:
				input := v.Input
				if input == nil {
					input = map[string]any{}
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    v.ID,
					Name:  v.Name,
					Input: input,
				}})
			case provider.ToolResultBlock:
				blocks = append(blocks, anthropic.NewToolResultBlock(v.ToolUseID, v.Output, v.IsError))
			default:
				return nil, fmt.Errorf("message %d: unsupported content block %T", i, b)
			}
		}

		switch msg.Role {
		case provider.RoleUser, provider.RoleTool:
			out = append(out, anthropic.NewUserMessage(blocks...))
		case provider.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		default:
			return nil, fmt.Errorf("message %d: unsupported role %q", i, msg.Role)
		}
	}
	return out, nil
}

func toTools(decls []tool.Declaration) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(decls))
	for _, d := range decls {
		schema := anthropic.ToolInputSchemaParam{Properties: map[string]any{}}
		if d.Parameters != nil {
			if len(d.Parameters.Properties) > 0 {
				schema.Properties = d.Parameters.Properties
			}
			schema.Required = d.Parameters.Required
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Name,
			Description: anthropic.String(d.Description),
			InputSchema: schema,
		}})
	}
	return out
}

// fromMessage converts an API reply. Block kinds other than text and tool_use are dropped.
func fromMessage(msg *anthropic.Message) (*provider.Response, error) {
	if msg == nil {
		return nil, provider.MalformedError("nil message")
	}

	resp := &provider.Response{
		StopReason: provider.StopReason(msg.StopReason),
		Model:      string(msg.Model),
		Usage: provider.Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}

	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Content = append(resp.Content, provider.TextBlock{Text: v.Text})
		case anthropic.ToolUseBlock:
			input, err := decodeInput(v.JSON.Input.Raw())
			if err != nil {
				return nil, provider.MalformedError(fmt.Sprintf("tool_use %q has invalid input: %v", v.ID, err))
			}
			resp.Content = append(resp.Content, provider.ToolUseBlock{
				ID:    v.ID,
				Name:  v.Name,
				Input: input,
			})
		}
	}
	return resp, nil
}

func decodeInput(raw string) (map[string]any, error) {
	input := map[string]any{}
	if raw == "" || raw == "null" {
		return input, nil
	}
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return nil, err
	}
	return input, nil
}

// mapError converts SDK errors into provider errors.
func mapError(ctx context.Context, err error) error {
	var pe *provider.ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return provider.ErrorFromStatus(apiErr.StatusCode, fmt.Sprintf("API returned status %d", apiErr.StatusCode), err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return &provider.ProviderError{
			Code:       provider.ErrorCodeTimeout,
			Message:    "request cancelled",
			Underlying: errors.Join(ctxErr, err),
		}
	}
	return provider.NetworkError(err)
}

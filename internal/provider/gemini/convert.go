package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/termchat/internal/provider"
	"github.com/Cyclone1070/termchat/internal/tool"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// toGeminiContents converts the conversation to Gemini Content format.
// Tool results need the function name, which Gemini keys responses by.
func toGeminiContents(msgs []provider.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(msgs))
	callNames := make(map[string]string)

	for i, msg := range msgs {
		role := genai.RoleUser
		if msg.Role == provider.RoleAssistant {
			role = genai.RoleModel
		}

		parts := make([]*genai.Part, 0, len(msg.Content))
		for _, b := range msg.Content {
			switch v := b.(type) {
			case provider.TextBlock:
				if v.Text != "" {
					parts = append(parts, genai.NewPartFromText(v.Text))
				}
			case provider.ToolUseBlock:
				callNames[v.ID] = v.Name
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   v.ID,
						Name: v.Name,
						Args: v.Input,
					},
				})
			case provider.ToolResultBlock:
				name, ok := callNames[v.ToolUseID]
				if !ok {
					return nil, fmt.Errorf("message %d: result for unknown tool call %q", i, v.ToolUseID)
				}
				key := "output"
				if v.IsError {
					key = "error"
				}
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       v.ToolUseID,
						Name:     name,
						Response: map[string]any{key: v.Output},
					},
				})
			default:
				return nil, fmt.Errorf("message %d: unsupported content block %T", i, b)
			}
		}

		// Skip empty messages
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	return contents, nil
}

// toGeminiConfig converts the request settings to Gemini config.
func toGeminiConfig(req *provider.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.System)},
		}
	}
	if len(req.Tools) > 0 {
		config.Tools = toGeminiTools(req.Tools)
	}
	return config
}

// defaultSafetySettings returns safety settings with BLOCK_NONE for all categories.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdOff,
		},
	}
}

// toGeminiTools converts tool declarations to Gemini tools.
func toGeminiTools(decls []tool.Declaration) []*genai.Tool {
	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		fd := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.Parameters != nil {
			fd.Parameters = toGeminiSchema(d.Parameters)
		}
		functionDeclarations = append(functionDeclarations, fd)
	}
	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGeminiSchema converts a tool schema to Gemini Schema.
func toGeminiSchema(s *tool.Schema) *genai.Schema {
	schema := &genai.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
	}
	if len(s.Enum) > 0 {
		schema.Enum = s.Enum
	}
	if s.Items != nil {
		schema.Items = toGeminiSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			schema.Properties[name] = toGeminiSchema(prop)
		}
	}
	return schema
}

// toGeminiType converts a schema type to Gemini Type.
func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts Gemini response to internal format.
func fromGeminiResponse(resp *genai.GenerateContentResponse, modelUsed string) (*provider.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, provider.MalformedError("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeContentBlocked,
			Message: "content blocked by safety filters",
		}
	}

	out := &provider.Response{Model: modelUsed}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		out.Usage = provider.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	hasCalls := false
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			switch {
			case part.Thought:
				continue
			case part.FunctionCall != nil:
				hasCalls = true
				id := part.FunctionCall.ID
				if id == "" {
					// older models do not assign call ids
					id = "call_" + uuid.NewString()
				}
				args := part.FunctionCall.Args
				if args == nil {
					args = map[string]any{}
				}
				out.Content = append(out.Content, provider.ToolUseBlock{
					ID:    id,
					Name:  part.FunctionCall.Name,
					Input: args,
				})
			case part.Text != "":
				out.Content = append(out.Content, provider.TextBlock{Text: part.Text})
			}
		}
	}

	switch {
	case hasCalls:
		out.StopReason = provider.StopReasonToolUse
	case candidate.FinishReason == genai.FinishReasonMaxTokens:
		out.StopReason = provider.StopReasonMaxTokens
	case candidate.FinishReason == genai.FinishReasonStop, candidate.FinishReason == "":
		out.StopReason = provider.StopReasonEndTurn
	default:
		out.StopReason = provider.StopReason(strings.ToLower(string(candidate.FinishReason)))
	}

	return out, nil
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return provider.ErrorFromStatus(apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return provider.ErrorFromStatus(apiErrPtr.Code, apiErrPtr.Message, err)
	}

	// Generic network error
	return provider.NetworkError(err)
}

package tool

import (
	"context"
	"fmt"
)

// Type represents JSON Schema types.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema represents a JSON Schema for tool parameters.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// ObjectSchema builds an object schema from properties and required names.
func ObjectSchema(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

// StringProperty is a shorthand for a described string property.
func StringProperty(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// Declaration declares a tool's function signature for the LLM.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// ErrorKind classifies a failed tool invocation.
type ErrorKind string

const (
	ErrorKindUnknownTool  ErrorKind = "unknown_tool"
	ErrorKindExecution    ErrorKind = "tool_execution_error"
	ErrorKindInvalidInput ErrorKind = "invalid_input"
	ErrorKindCancelled    ErrorKind = "cancelled"
)

// Result is the outcome of one tool invocation.
// A zero Kind means success and Output holds the tool's text.
type Result struct {
	Output  string
	Kind    ErrorKind
	Message string
}

// Ok returns a successful result.
func Ok(output string) Result {
	return Result{Output: output}
}

// Err returns a failed result of the given kind.
func Err(kind ErrorKind, message string) Result {
	return Result{Kind: kind, Message: message}
}

// Errf is Err with formatting.
func Errf(kind ErrorKind, format string, args ...any) Result {
	return Err(kind, fmt.Sprintf(format, args...))
}

// IsError reports whether the invocation failed.
func (r Result) IsError() bool {
	return r.Kind != ""
}

// Content is the text sent back to the model for this result.
func (r Result) Content() string {
	if r.IsError() {
		return fmt.Sprintf("Error (%s): %s", r.Kind, r.Message)
	}
	return r.Output
}

// Tool is a named capability the model may invoke.
type Tool interface {
	Declaration() Declaration
	Invoke(ctx context.Context, input map[string]any) Result
}

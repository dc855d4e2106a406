package tool

import (
	"context"

	"github.com/mitchellh/mapstructure"
)

// Validatable is implemented by request types that check their own fields.
type Validatable interface {
	Validate() error
}

// Executor runs a tool with a typed request.
type Executor[Req any] func(context.Context, Req) (string, error)

// TypedTool adapts a typed executor to the Tool interface.
// Input is decoded with mapstructure and validated before the executor runs.
// Any failure comes back as a tool_execution_error result.
type TypedTool[Req any] struct {
	decl     Declaration
	executor Executor[Req]
}

// NewTypedTool creates a tool from its declaration and executor.
func NewTypedTool[Req any](decl Declaration, executor Executor[Req]) *TypedTool[Req] {
	return &TypedTool[Req]{decl: decl, executor: executor}
}

// Declaration implements Tool.
func (t *TypedTool[Req]) Declaration() Declaration {
	return t.decl
}

// Invoke implements Tool.
func (t *TypedTool[Req]) Invoke(ctx context.Context, input map[string]any) Result {
	var req Req
	if err := mapstructure.Decode(input, &req); err != nil {
		return Errf(ErrorKindExecution, "invalid arguments: %v", err)
	}

	if v, ok := any(req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return Errf(ErrorKindExecution, "%s validation failed: %v", t.decl.Name, err)
		}
	}

	out, err := t.executor(ctx, req)
	if err != nil {
		return Err(ErrorKindExecution, err.Error())
	}
	return Ok(out)
}

var _ Tool = (*TypedTool[struct{}])(nil)

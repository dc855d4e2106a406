// Package calculator provides the arithmetic tool.
package calculator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/termchat/internal/tool"
)

// Name is the tool name exposed to the model.
const Name = "calculator"

// DefaultMaxLength bounds the expression size when no limit is configured.
const DefaultMaxLength = 256

// Request is the calculator's input.
type Request struct {
	Expression string `mapstructure:"expression"`
}

// Validate implements tool.Validatable.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Expression) == "" {
		return ErrEmptyExpression
	}
	return nil
}

// Declaration describes the calculator to the model.
func Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        Name,
		Description: "Perform mathematical calculations. Supports + - * / % ^, parentheses and decimals.",
		Parameters: tool.ObjectSchema(map[string]*tool.Schema{
			"expression": tool.StringProperty("Mathematical expression to evaluate, e.g. \"15 * 23\""),
		}, "expression"),
	}
}

// New creates the calculator tool. maxLength <= 0 uses DefaultMaxLength.
func New(maxLength int) tool.Tool {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return tool.NewTypedTool(Declaration(), func(_ context.Context, req Request) (string, error) {
		if len(req.Expression) > maxLength {
			return "", fmt.Errorf("%w (%d > %d)", ErrTooLong, len(req.Expression), maxLength)
		}
		v, err := Evaluate(req.Expression)
		if err != nil {
			return "", err
		}
		return Format(v), nil
	})
}

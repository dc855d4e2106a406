package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Validator validates tool input before execution.
type Validator interface {
	Validate(input map[string]any, schema *Schema) error
}

// DefaultValidator checks required fields, primitive types and enums.
type DefaultValidator struct{}

// Validate ensures that input satisfies the provided schema.
func (DefaultValidator) Validate(input map[string]any, schema *Schema) error {
	if schema == nil {
		return nil
	}
	if input == nil {
		input = map[string]any{}
	}

	for _, field := range schema.Required {
		if _, exists := input[field]; !exists {
			return fmt.Errorf("missing required field: %s", field)
		}
	}

	for key, value := range input {
		prop, ok := schema.Properties[key]
		if !ok || prop == nil || prop.Type == "" {
			continue
		}
		if err := validateType(value, prop.Type); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		if len(prop.Enum) > 0 {
			s, _ := value.(string)
			if !slices.Contains(prop.Enum, s) {
				return fmt.Errorf("field %s: %q is not one of %v", key, s, prop.Enum)
			}
		}
	}

	return nil
}

func validateType(value any, expected Type) error {
	switch expected {
	case TypeString:
		if _, ok := value.(string); ok {
			return nil
		}
	case TypeNumber:
		if isNumber(value) {
			return nil
		}
	case TypeInteger:
		if isInteger(value) {
			return nil
		}
	case TypeBoolean:
		if _, ok := value.(bool); ok {
			return nil
		}
	case TypeObject:
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case TypeArray:
		if _, ok := value.([]any); ok {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32, float64:
		return true
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return math.Trunc(float64(v)) == float64(v)
	case float64:
		return math.Trunc(v) == v
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}

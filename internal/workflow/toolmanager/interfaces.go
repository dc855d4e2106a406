package toolmanager

import (
	"github.com/Cyclone1070/termchat/internal/tool"
)

// inputValidator checks tool input against the declared schema before dispatch.
type inputValidator interface {
	Validate(input map[string]any, schema *tool.Schema) error
}

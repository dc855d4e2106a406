package toolmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Cyclone1070/termchat/internal/provider"
	"github.com/Cyclone1070/termchat/internal/tool"
	"github.com/Cyclone1070/termchat/internal/workflow"
)

// ErrDuplicateTool is returned when a tool name is registered twice.
var ErrDuplicateTool = errors.New("tool already registered")

// CancelledMessage is the output recorded for calls abandoned by cancellation.
const CancelledMessage = "tool execution cancelled"

// Options configures a ToolManager.
type Options struct {
	// Concurrency bounds how many calls of one batch run at once. <= 0 means 1.
	Concurrency int
	Validator   inputValidator
	Logger      *slog.Logger
}

type ToolManager struct {
	registry    map[string]tool.Tool
	validator   inputValidator
	concurrency int
	logger      *slog.Logger
}

func NewToolManager(opts Options, tools ...tool.Tool) (*ToolManager, error) {
	tm := &ToolManager{
		registry:    make(map[string]tool.Tool),
		validator:   opts.Validator,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
	if tm.validator == nil {
		tm.validator = tool.DefaultValidator{}
	}
	if tm.concurrency <= 0 {
		tm.concurrency = 1
	}
	if tm.logger == nil {
		tm.logger = slog.New(slog.DiscardHandler)
	}
	for _, t := range tools {
		if err := tm.Register(t); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

func (m *ToolManager) Register(t tool.Tool) error {
	name := t.Declaration().Name
	if name == "" {
		return errors.New("tool name must not be empty")
	}
	if _, exists := m.registry[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	m.registry[name] = t
	return nil
}

func (m *ToolManager) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(m.registry))
	for _, t := range m.registry {
		decls = append(decls, t.Declaration())
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}

func (m *ToolManager) names() []string {
	names := make([]string, 0, len(m.registry))
	for name := range m.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs a single tool call. Failures, including panics, come back as error results.
func (m *ToolManager) Invoke(ctx context.Context, name string, input map[string]any) (res tool.Result) {
	t, ok := m.registry[name]
	if !ok {
		return tool.Errf(tool.ErrorKindUnknownTool, "tool %q does not exist; available tools: %s",
			name, strings.Join(m.names(), ", "))
	}

	decl := t.Declaration()
	if err := m.validator.Validate(input, decl.Parameters); err != nil {
		schemaJSON, _ := json.Marshal(decl.Parameters)
		return tool.Errf(tool.ErrorKindInvalidInput, "invalid arguments for tool %q: %v; expected schema: %s",
			name, err, schemaJSON)
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("tool panicked", "tool", name, "panic", r)
			res = tool.Errf(tool.ErrorKindExecution, "tool %q failed unexpectedly: %v", name, r)
		}
	}()

	return t.Invoke(ctx, input)
}

// InvokeAll executes every call of one assistant message and returns one result per call,
// in call order. If ctx is cancelled, unfinished calls are answered with cancellation results.
func (m *ToolManager) InvokeAll(ctx context.Context, calls []provider.ToolUseBlock, events chan<- workflow.Event) []provider.ToolResultBlock {
	results := make([]provider.ToolResultBlock, len(calls))
	done := make([]chan tool.Result, len(calls))
	sem := make(chan struct{}, m.concurrency)

	for i, call := range calls {
		ch := make(chan tool.Result, 1)
		done[i] = ch
		go func() {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			workflow.Emit(ctx, events, workflow.ToolStartEvent{
				ID:             call.ID,
				ToolName:       call.Name,
				RequestDisplay: requestDisplay(call.Input),
			})
			res := m.Invoke(ctx, call.Name, call.Input)
			ch <- res
		}()
	}

	for i, call := range calls {
		var res tool.Result
		select {
		case res = <-done[i]:
		case <-ctx.Done():
			res = tool.Err(tool.ErrorKindCancelled, CancelledMessage)
		}
		if res.IsError() {
			m.logger.Debug("tool call failed", "tool", call.Name, "id", call.ID, "kind", res.Kind, "message", res.Message)
		}
		results[i] = provider.ToolResultBlock{
			ToolUseID: call.ID,
			Output:    res.Content(),
			IsError:   res.IsError(),
		}
		workflow.Emit(ctx, events, workflow.ToolEndEvent{
			ID:       call.ID,
			ToolName: call.Name,
			Output:   res.Content(),
			IsError:  res.IsError(),
		})
	}

	return results
}

func requestDisplay(input map[string]any) string {
	if len(input) == 0 {
		return ""
	}
	b, err := json.Marshal(input)
	if err != nil {
		return ""
	}
	return string(b)
}

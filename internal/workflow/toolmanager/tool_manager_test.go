package toolmanager

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Cyclone1070/termchat/internal/provider"
	"github.com/Cyclone1070/termchat/internal/tool"
	"github.com/Cyclone1070/termchat/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTool struct {
	declaration tool.Declaration
	invokeFunc  func(ctx context.Context, input map[string]any) tool.Result
}

func (m *mockTool) Declaration() tool.Declaration { return m.declaration }
func (m *mockTool) Invoke(ctx context.Context, input map[string]any) tool.Result {
	if m.invokeFunc != nil {
		return m.invokeFunc(ctx, input)
	}
	return tool.Ok("ok")
}

func named(name string) *mockTool {
	return &mockTool{declaration: tool.Declaration{Name: name}}
}

func newManager(t *testing.T, opts Options, tools ...tool.Tool) *ToolManager {
	t.Helper()
	tm, err := NewToolManager(opts, tools...)
	require.NoError(t, err)
	return tm
}

func TestRegister_AddsTool(t *testing.T) {
	tm := newManager(t, Options{})
	require.NoError(t, tm.Register(named("test-tool")))

	decls := tm.Declarations()
	assert.Len(t, decls, 1)
	assert.Equal(t, "test-tool", decls[0].Name)
}

func TestRegister_DuplicateName(t *testing.T) {
	tm := newManager(t, Options{}, named("test-tool"))

	err := tm.Register(named("test-tool"))

	assert.ErrorIs(t, err, ErrDuplicateTool)
	assert.Len(t, tm.Declarations(), 1)
}

func TestNewToolManager_DuplicateName(t *testing.T) {
	_, err := NewToolManager(Options{}, named("a"), named("a"))
	assert.ErrorIs(t, err, ErrDuplicateTool)
}

func TestDeclarations_SortedByName(t *testing.T) {
	tm := newManager(t, Options{}, named("z"), named("a"), named("m"))

	decls := tm.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, "a", decls[0].Name)
	assert.Equal(t, "m", decls[1].Name)
	assert.Equal(t, "z", decls[2].Name)
}

func TestInvoke_UnknownTool(t *testing.T) {
	tm := newManager(t, Options{}, named("calculator"), named("weather"))

	res := tm.Invoke(context.Background(), "nonexistent_tool", nil)

	assert.True(t, res.IsError())
	assert.Equal(t, tool.ErrorKindUnknownTool, res.Kind)
	assert.Contains(t, res.Message, `tool "nonexistent_tool" does not exist`)
	assert.Contains(t, res.Message, "calculator, weather")
}

func TestInvoke_InvalidInput(t *testing.T) {
	mt := &mockTool{
		declaration: tool.Declaration{
			Name: "calc",
			Parameters: tool.ObjectSchema(map[string]*tool.Schema{
				"expression": tool.StringProperty(""),
			}, "expression"),
		},
		invokeFunc: func(context.Context, map[string]any) tool.Result {
			t.Fatal("tool must not run on invalid input")
			return tool.Result{}
		},
	}
	tm := newManager(t, Options{}, mt)

	res := tm.Invoke(context.Background(), "calc", map[string]any{"expression": 42})

	assert.Equal(t, tool.ErrorKindInvalidInput, res.Kind)
	assert.Contains(t, res.Message, "expected string")
}

func TestInvoke_RecoversPanic(t *testing.T) {
	mt := named("crashy")
	mt.invokeFunc = func(context.Context, map[string]any) tool.Result {
		panic("kaboom")
	}
	tm := newManager(t, Options{}, mt)

	res := tm.Invoke(context.Background(), "crashy", nil)

	assert.Equal(t, tool.ErrorKindExecution, res.Kind)
	assert.Contains(t, res.Message, "kaboom")
}

func TestInvokeAll_PreservesOrderAndIDs(t *testing.T) {
	slow := named("slow")
	slow.invokeFunc = func(context.Context, map[string]any) tool.Result {
		time.Sleep(20 * time.Millisecond)
		return tool.Ok("slow done")
	}
	fast := named("fast")
	fast.invokeFunc = func(context.Context, map[string]any) tool.Result {
		return tool.Ok("fast done")
	}
	tm := newManager(t, Options{Concurrency: 4}, slow, fast)

	results := tm.InvokeAll(context.Background(), []provider.ToolUseBlock{
		{ID: "1", Name: "slow"},
		{ID: "2", Name: "fast"},
		{ID: "3", Name: "missing"},
	}, nil)

	require.Len(t, results, 3)
	assert.Equal(t, provider.ToolResultBlock{ToolUseID: "1", Output: "slow done"}, results[0])
	assert.Equal(t, provider.ToolResultBlock{ToolUseID: "2", Output: "fast done"}, results[1])
	assert.Equal(t, "3", results[2].ToolUseID)
	assert.True(t, results[2].IsError)
}

func TestInvokeAll_BoundedConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	mt := named("work")
	mt.invokeFunc = func(context.Context, map[string]any) tool.Result {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return tool.Ok("")
	}
	tm := newManager(t, Options{Concurrency: 2}, mt)

	calls := make([]provider.ToolUseBlock, 6)
	for i := range calls {
		calls[i] = provider.ToolUseBlock{ID: string(rune('a' + i)), Name: "work"}
	}
	results := tm.InvokeAll(context.Background(), calls, nil)

	assert.Len(t, results, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestInvokeAll_CancelledCallsGetErrorResults(t *testing.T) {
	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	hang := func(ctx context.Context, _ map[string]any) tool.Result {
		once.Do(func() { close(started) })
		<-ctx.Done()
		<-release
		return tool.Ok("too late")
	}
	first, second := named("first"), named("second")
	first.invokeFunc = hang
	second.invokeFunc = hang
	tm := newManager(t, Options{Concurrency: 1}, first, second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	results := tm.InvokeAll(ctx, []provider.ToolUseBlock{
		{ID: "a", Name: "first"},
		{ID: "b", Name: "second"},
	}, nil)
	close(release)

	require.Len(t, results, 2)
	for i, id := range []string{"a", "b"} {
		assert.Equal(t, id, results[i].ToolUseID)
		assert.True(t, results[i].IsError)
		assert.Contains(t, results[i].Output, CancelledMessage)
	}
}

func TestInvokeAll_FinishedCallKeepsResultAfterCancel(t *testing.T) {
	finished := make(chan struct{})
	quick := named("quick")
	quick.invokeFunc = func(context.Context, map[string]any) tool.Result {
		defer close(finished)
		return tool.Ok("ok")
	}
	release := make(chan struct{})
	slow := named("slow")
	slow.invokeFunc = func(ctx context.Context, _ map[string]any) tool.Result {
		<-finished
		<-release
		return tool.Ok("too late")
	}
	tm := newManager(t, Options{Concurrency: 2}, quick, slow)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-finished
		cancel()
	}()

	results := tm.InvokeAll(ctx, []provider.ToolUseBlock{
		{ID: "a", Name: "slow"},
		{ID: "b", Name: "quick"},
	}, nil)
	close(release)

	require.Len(t, results, 2)
	assert.True(t, results[0].IsError)
	assert.Contains(t, results[0].Output, CancelledMessage)
	assert.Equal(t, "b", results[1].ToolUseID)
	if !results[1].IsError {
		assert.Equal(t, "ok", results[1].Output)
	} else {
		assert.Contains(t, results[1].Output, CancelledMessage)
	}
}

func TestInvokeAll_EmitsEvents(t *testing.T) {
	tm := newManager(t, Options{}, named("echo"))
	events := make(chan workflow.Event, 10)

	tm.InvokeAll(context.Background(), []provider.ToolUseBlock{
		{ID: "x", Name: "echo", Input: map[string]any{"value": "hi"}},
	}, events)
	close(events)

	var got []workflow.Event
	for e := range events {
		got = append(got, e)
	}
	require.Len(t, got, 2)
	assert.Equal(t, workflow.ToolStartEvent{ID: "x", ToolName: "echo", RequestDisplay: `{"value":"hi"}`}, got[0])
	assert.Equal(t, workflow.ToolEndEvent{ID: "x", ToolName: "echo", Output: "ok"}, got[1])
}

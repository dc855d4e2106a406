package main

import (
	"context"
	"errors"
	"sync"

	"github.com/Cyclone1070/termchat/internal/artifact"
	"github.com/Cyclone1070/termchat/internal/provider"
	"github.com/Cyclone1070/termchat/internal/ui"
	"github.com/Cyclone1070/termchat/internal/workflow"
)

type statusCall struct {
	Phase   string
	Message string
}

// mockUI records everything written to it. Start blocks until stop is closed.
type mockUI struct {
	mu       sync.Mutex
	statuses []statusCall
	messages []string
	errs     []string
	events   []workflow.Event
	model    string
	cleared  int

	inputs   chan string
	eventCh  chan workflow.Event
	commands chan ui.UICommand
	ready    chan struct{}
	stop     chan struct{}
}

func newMockUI() *mockUI {
	m := &mockUI{
		inputs:   make(chan string, 4),
		eventCh:  make(chan workflow.Event, 64),
		commands: make(chan ui.UICommand, 4),
		ready:    make(chan struct{}),
		stop:     make(chan struct{}),
	}
	close(m.ready)
	go func() {
		for {
			select {
			case e := <-m.eventCh:
				m.mu.Lock()
				m.events = append(m.events, e)
				m.mu.Unlock()
			case <-m.stop:
				return
			}
		}
	}()
	return m
}

func (m *mockUI) ReadInput(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case text := <-m.inputs:
		return text, nil
	}
}

func (m *mockUI) WriteStatus(phase string, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, statusCall{Phase: phase, Message: message})
}

func (m *mockUI) WriteMessage(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, content)
}

func (m *mockUI) WriteError(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, content)
}

func (m *mockUI) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
}

func (m *mockUI) ClearHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
}

func (m *mockUI) Events() chan<- workflow.Event { return m.eventCh }
func (m *mockUI) Commands() <-chan ui.UICommand { return m.commands }
func (m *mockUI) Ready() <-chan struct{}        { return m.ready }
func (m *mockUI) Start() error                  { <-m.stop; return nil }

func (m *mockUI) Statuses() []statusCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]statusCall(nil), m.statuses...)
}

func (m *mockUI) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

func (m *mockUI) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errs...)
}

func (m *mockUI) Model() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

func (m *mockUI) hasStatus(phase string) bool {
	for _, s := range m.Statuses() {
		if s.Phase == phase {
			return true
		}
	}
	return false
}

var _ ui.UserInterface = (*mockUI)(nil)

// mockProvider serves generateFunc, recording every request.
type mockProvider struct {
	mu           sync.Mutex
	requests     []*provider.Request
	generateFunc func(ctx context.Context, req *provider.Request) (*provider.Response, error)
}

func (p *mockProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	if p.generateFunc == nil {
		return nil, errors.New("no reply configured")
	}
	return p.generateFunc(ctx, req)
}

func (p *mockProvider) Name() string         { return "mock" }
func (p *mockProvider) DefaultModel() string { return "mock-model" }

func (p *mockProvider) Requests() []*provider.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*provider.Request(nil), p.requests...)
}

func textReply(text string) *provider.Response {
	return &provider.Response{
		Content:    []provider.ContentBlock{provider.TextBlock{Text: text}},
		StopReason: provider.StopReasonEndTurn,
	}
}

func toolReply(id, name string, input map[string]any) *provider.Response {
	return &provider.Response{
		Content:    []provider.ContentBlock{provider.ToolUseBlock{ID: id, Name: name, Input: input}},
		StopReason: provider.StopReasonToolUse,
	}
}

// mockStore records opened and copied artifacts.
type mockStore struct {
	mu      sync.Mutex
	opened  []artifact.Artifact
	copied  []artifact.Artifact
	openErr error
	result  artifact.Opened
}

func (s *mockStore) Open(a artifact.Artifact) (artifact.Opened, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, a)
	return s.result, s.openErr
}

func (s *mockStore) Copy(a artifact.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copied = append(s.copied, a)
	return nil
}

func (s *mockStore) Close() error { return nil }

func (s *mockStore) Opened() []artifact.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]artifact.Artifact(nil), s.opened...)
}

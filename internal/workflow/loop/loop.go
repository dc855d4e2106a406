package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Cyclone1070/termchat/internal/artifact"
	"github.com/Cyclone1070/termchat/internal/conversation"
	"github.com/Cyclone1070/termchat/internal/provider"
	"github.com/Cyclone1070/termchat/internal/workflow"
)

const doneEventTimeout = time.Second

var (
	ErrTurnInProgress     = errors.New("a turn is already in progress")
	ErrPendingUserMessage = errors.New("previous message is still pending; retry it or reset the conversation")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrNothingToRetry     = errors.New("nothing to retry")
	ErrMalformedReply     = errors.New("malformed reply")
)

// Config holds the per-request settings of the loop.
type Config struct {
	Model         string
	System        string
	MaxTokens     int
	MaxRoundTrips int
}

// Loop drives a conversation: one user turn at a time, with any number of
// tool round trips in between, up to MaxRoundTrips requests per turn.
type Loop struct {
	provider llmProvider
	tools    toolManager
	events   chan<- workflow.Event
	cfg      Config
	logger   *slog.Logger

	mu   sync.Mutex
	busy bool
	conv *conversation.Conversation
}

func NewLoop(provider llmProvider, tools toolManager, events chan<- workflow.Event, cfg Config, logger *slog.Logger) *Loop {
	if cfg.MaxRoundTrips <= 0 {
		cfg.MaxRoundTrips = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		provider: provider,
		tools:    tools,
		events:   events,
		cfg:      cfg,
		logger:   logger,
		conv:     conversation.New(),
	}
}

// Run sends text as a new user message and drives the turn to completion.
// If the previous turn failed before the model replied, the same text is
// retried without being appended again; different text is rejected with
// ErrPendingUserMessage. A non-nil error means the turn never started.
func (l *Loop) Run(ctx context.Context, text string) (Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return Outcome{}, ErrEmptyMessage
	}
	if err := l.acquire(); err != nil {
		return Outcome{}, err
	}
	defer l.release()

	if pending, ok := l.pending(); ok {
		if pending != text {
			return Outcome{}, ErrPendingUserMessage
		}
		l.logger.Debug("retrying pending user message")
	} else if err := l.append(provider.NewUserMessage(text)); err != nil {
		return Outcome{}, fmt.Errorf("append user message: %w", err)
	}

	return l.turn(ctx), nil
}

// Retry re-issues the request for a turn that ended without a final reply,
// either because the pending user message got no answer or because the
// turn stopped after a tool phase.
func (l *Loop) Retry(ctx context.Context) (Outcome, error) {
	if err := l.acquire(); err != nil {
		return Outcome{}, err
	}
	defer l.release()

	last, ok := l.last()
	if !ok || last.Role == provider.RoleAssistant {
		return Outcome{}, ErrNothingToRetry
	}
	return l.turn(ctx), nil
}

// Reset discards the conversation.
func (l *Loop) Reset() error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	l.mu.Lock()
	l.conv = conversation.New()
	l.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the conversation.
func (l *Loop) Snapshot() []provider.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conv.Snapshot()
}

// Pending returns the user message still waiting for a reply, if any.
func (l *Loop) Pending() (string, bool) {
	return l.pending()
}

func (l *Loop) turn(ctx context.Context) Outcome {
	var out Outcome

	defer func() {
		// Done must still reach the UI after ctx is cancelled, but never wait on a dead reader.
		doneCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), doneEventTimeout)
		defer cancel()
		workflow.Emit(doneCtx, l.events, workflow.DoneEvent{})
	}()

	for out.RoundTrips < l.cfg.MaxRoundTrips {
		if err := ctx.Err(); err != nil {
			return l.fail(out, FailureCancelled, err)
		}
		out.RoundTrips++
		workflow.Emit(ctx, l.events, workflow.ThinkingEvent{RoundTrip: out.RoundTrips})

		resp, err := l.provider.Generate(ctx, l.request(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return l.fail(out, FailureCancelled, ctx.Err())
			}
			return l.fail(out, FailureTransport, fmt.Errorf("provider.Generate: %w", err))
		}
		out.Usage.InputTokens += resp.Usage.InputTokens
		out.Usage.OutputTokens += resp.Usage.OutputTokens

		reply := resp.Message()
		if err := l.append(reply); err != nil {
			return l.fail(out, FailureTransport, fmt.Errorf("%w: %w", ErrMalformedReply, err))
		}
		l.logger.Debug("assistant reply",
			"round_trip", out.RoundTrips,
			"stop_reason", resp.StopReason,
			"tool_calls", len(reply.ToolUses()),
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens,
		)

		l.present(ctx, &out, reply)

		calls := reply.ToolUses()
		if len(calls) == 0 {
			out.Status = StatusCompleted
			return out
		}

		results := l.tools.InvokeAll(ctx, calls, l.events)
		if err := l.append(provider.NewToolMessage(results)); err != nil {
			// InvokeAll answers every call, so this only fires on a registry bug.
			return l.fail(out, FailureTransport, fmt.Errorf("append tool results: %w", err))
		}
		for i, r := range results {
			out.Messages = append(out.Messages, DisplayMessage{
				Role:    provider.RoleTool,
				Text:    calls[i].Name + ": " + r.Output,
				IsError: r.IsError,
			})
		}

		if err := ctx.Err(); err != nil {
			return l.fail(out, FailureCancelled, err)
		}
	}

	return l.fail(out, FailureRoundTripLimit,
		fmt.Errorf("round trip limit (%d) reached", l.cfg.MaxRoundTrips))
}

func (l *Loop) request(ctx context.Context) *provider.Request {
	req := &provider.Request{
		Model:     l.cfg.Model,
		System:    l.cfg.System,
		Messages:  l.Snapshot(),
		MaxTokens: l.cfg.MaxTokens,
		Tools:     l.tools.Declarations(),
	}
	if l.events != nil {
		req.OnText = func(delta string) {
			workflow.Emit(ctx, l.events, workflow.TextDeltaEvent{Text: delta})
		}
	}
	return req
}

// present extracts artifacts from the reply's text and records what the
// user sees.
func (l *Loop) present(ctx context.Context, out *Outcome, reply provider.Message) {
	scan := artifact.Scan(reply.Text())
	for _, a := range scan.Anomalies {
		l.logger.Debug("artifact extraction anomaly",
			"kind", a.Kind, "offset", a.Offset, "content_type", a.ContentType)
	}

	if scan.Text != "" {
		out.Messages = append(out.Messages, DisplayMessage{Role: provider.RoleAssistant, Text: scan.Text})
		if out.Text != "" {
			out.Text += "\n\n"
		}
		out.Text += scan.Text
		workflow.Emit(ctx, l.events, workflow.TextEvent{Text: scan.Text})
	}
	for _, a := range scan.Artifacts {
		out.Artifacts = append(out.Artifacts, a)
		workflow.Emit(ctx, l.events, workflow.ArtifactEvent{Artifact: a})
	}
}

func (l *Loop) fail(out Outcome, kind FailureKind, err error) Outcome {
	out.Status = StatusFailed
	out.Failure = kind
	out.Err = err
	if kind == FailureCancelled {
		l.logger.Info("turn cancelled", "round_trips", out.RoundTrips)
	} else {
		l.logger.Warn("turn failed", "kind", kind, "round_trips", out.RoundTrips, "error", err)
	}
	return out
}

func (l *Loop) acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy {
		return ErrTurnInProgress
	}
	l.busy = true
	return nil
}

func (l *Loop) release() {
	l.mu.Lock()
	l.busy = false
	l.mu.Unlock()
}

func (l *Loop) append(msg provider.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conv.Append(msg)
}

func (l *Loop) last() (provider.Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conv.Last()
}

func (l *Loop) pending() (string, bool) {
	last, ok := l.last()
	if !ok || last.Role != provider.RoleUser {
		return "", false
	}
	return last.Text(), true
}

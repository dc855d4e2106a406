package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Cyclone1070/termchat/internal/artifact"
	"github.com/Cyclone1070/termchat/internal/ui"
	"github.com/Cyclone1070/termchat/internal/ui/models"
	"github.com/Cyclone1070/termchat/internal/workflow/loop"
)

// session runs turns for the REPL and the command handler and reports
// their outcomes to the UI.
type session struct {
	engine   *loop.Loop
	ui       ui.UserInterface
	store    artifactStore
	autoOpen bool
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newSession(engine *loop.Loop, userInterface ui.UserInterface, store artifactStore, autoOpen bool, logger *slog.Logger) *session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &session{
		engine:   engine,
		ui:       userInterface,
		store:    store,
		autoOpen: autoOpen,
		logger:   logger,
	}
}

// send runs one turn for text submitted by the user.
func (s *session) send(ctx context.Context, text string) {
	s.run(ctx, func(ctx context.Context) (loop.Outcome, error) {
		return s.engine.Run(ctx, text)
	})
}

// retry re-issues the pending user message.
func (s *session) retry(ctx context.Context) {
	s.run(ctx, s.engine.Retry)
}

func (s *session) run(ctx context.Context, turn func(context.Context) (loop.Outcome, error)) {
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		s.reportRejected(loop.ErrTurnInProgress)
		return
	}
	s.cancel = cancel
	s.mu.Unlock()

	out, err := turn(turnCtx)

	s.mu.Lock()
	s.cancel = nil
	s.mu.Unlock()

	if err != nil {
		s.reportRejected(err)
		return
	}
	s.report(out)
}

// cancelTurn aborts the running turn, if any.
func (s *session) cancelTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// reset starts a new conversation.
func (s *session) reset() {
	if err := s.engine.Reset(); err != nil {
		s.ui.WriteError(fmt.Sprintf("cannot reset: %v", err))
		return
	}
	s.ui.ClearHistory()
	s.ui.WriteStatus(models.PhaseReady, "")
	s.ui.WriteMessage("Started a new conversation.")
}

func (s *session) reportRejected(err error) {
	switch {
	case errors.Is(err, loop.ErrEmptyMessage):
		return
	case errors.Is(err, loop.ErrPendingUserMessage):
		s.ui.WriteError(err.Error() + " (/retry or /reset)")
	default:
		s.ui.WriteError(err.Error())
	}
}

func (s *session) report(out loop.Outcome) {
	if out.Completed() {
		s.ui.WriteStatus(models.PhaseDone, fmt.Sprintf("%d round trip(s), %d in / %d out tokens",
			out.RoundTrips, out.Usage.InputTokens, out.Usage.OutputTokens))
		if s.autoOpen && len(out.Artifacts) > 0 {
			s.open(out.Artifacts[len(out.Artifacts)-1])
		}
		return
	}

	switch out.Failure {
	case loop.FailureCancelled:
		s.ui.WriteStatus(models.PhaseReady, "Cancelled")
		s.ui.WriteMessage("Turn cancelled. Use /retry to send it again.")
	case loop.FailureRoundTripLimit:
		s.ui.WriteStatus(models.PhaseError, "Round trip limit reached")
		s.ui.WriteError(fmt.Sprintf("%v. The partial answer is kept above.", out.Err))
	default:
		s.ui.WriteStatus(models.PhaseError, "Request failed")
		s.ui.WriteError(fmt.Sprintf("%v (use /retry to try again)", out.Err))
	}
}

// open hands an artifact to the system viewer.
func (s *session) open(a artifact.Artifact) {
	opened, err := s.store.Open(a)
	if err != nil {
		s.logger.Warn("failed to open artifact", "title", a.Title, "kind", a.Kind, "error", err)
		s.ui.WriteError(err.Error())
		return
	}
	switch opened.Action {
	case artifact.ActionSaved:
		s.ui.WriteMessage(fmt.Sprintf("Saved %q to %s", a.Title, opened.Path))
	default:
		s.ui.WriteMessage(fmt.Sprintf("Opened %q in your browser", a.Title))
	}
}

// copy puts an artifact's source on the clipboard.
func (s *session) copy(a artifact.Artifact) {
	if err := s.store.Copy(a); err != nil {
		s.ui.WriteError(err.Error())
		return
	}
	s.ui.WriteMessage(fmt.Sprintf("Copied %q to the clipboard", a.Title))
}

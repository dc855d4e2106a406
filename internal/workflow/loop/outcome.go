package loop

import (
	"github.com/Cyclone1070/termchat/internal/artifact"
	"github.com/Cyclone1070/termchat/internal/provider"
)

// Status is the terminal state of a turn.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// FailureKind says why a turn failed.
type FailureKind string

const (
	FailureTransport      FailureKind = "transport_error"
	FailureRoundTripLimit FailureKind = "round_trip_limit_exceeded"
	FailureCancelled      FailureKind = "cancelled"
)

// DisplayMessage is a message as the user sees it.
// Assistant text has artifact blocks replaced by placeholders.
type DisplayMessage struct {
	Role    provider.Role
	Text    string
	IsError bool
}

// Outcome summarizes one user turn.
type Outcome struct {
	Status  Status
	Failure FailureKind
	Err     error

	// Text joins the display text of every assistant message of the turn.
	Text       string
	Messages   []DisplayMessage
	Artifacts  []artifact.Artifact
	RoundTrips int
	Usage      provider.Usage
}

// Completed reports whether the turn ended with a final assistant reply.
func (o Outcome) Completed() bool {
	return o.Status == StatusCompleted
}

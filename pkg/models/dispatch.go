package models

import "time"

// DeliveryMode selects how aggressively a payload is pushed into a pane.
type DeliveryMode string

const (
	// ModeNormal is the standard paced delivery with a trailing input clear.
	ModeNormal DeliveryMode = "normal"
	// ModeInstant minimizes pacing delays and skips post-send cleanup.
	// Used for urgency-flagged messages.
	ModeInstant DeliveryMode = "instant"
)

// Valid returns true if the mode is a known value.
func (m DeliveryMode) Valid() bool {
	switch m {
	case ModeNormal, ModeInstant:
		return true
	default:
		return false
	}
}

// DispatchOutcome is the terminal state of one delivery attempt chain.
type DispatchOutcome string

const (
	// OutcomeSuccess indicates the payload was transmitted to the pane.
	OutcomeSuccess DispatchOutcome = "success"
	// OutcomeFailure indicates delivery failed after all retries.
	OutcomeFailure DispatchOutcome = "failure"
)

// DispatchRecord is one append-only audit entry per delivery attempt chain.
// Records are never mutated or deleted.
type DispatchRecord struct {
	// ID is a unique identifier for the record.
	ID string `json:"id"`
	// Timestamp is when the dispatch completed.
	Timestamp time.Time `json:"timestamp"`
	// Operation names the orchestrator operation that issued the dispatch
	// (directive, task, specialized, auto, collect-reports, emergency,
	// send, sweep-ping).
	Operation string `json:"operation"`
	// Role is the canonical role label the address was resolved from.
	Role string `json:"role"`
	// Address is the resolved tmux target.
	Address Address `json:"address"`
	// Preview is the message text truncated to 50 runes.
	Preview string `json:"preview"`
	// Mode is the delivery mode used.
	Mode DeliveryMode `json:"mode"`
	// Outcome is success or failure.
	Outcome DispatchOutcome `json:"outcome"`
	// Retries is the number of attempts beyond the first.
	Retries int `json:"retries"`
	// Error holds the final error text for failed dispatches.
	Error string `json:"error,omitempty"`
}

// PreviewLimit is the maximum rune length of an audit message preview.
const PreviewLimit = 50

// TruncatePreview shortens a message to PreviewLimit runes with an ellipsis.
// Rune counting keeps multi-byte text intact.
func TruncatePreview(msg string) string {
	runes := []rune(msg)
	if len(runes) > PreviewLimit {
		return string(runes[:PreviewLimit-3]) + "..."
	}
	return msg
}

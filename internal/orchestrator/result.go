package orchestrator

import (
	"fmt"

	"github.com/Kensan196948G/fleetmux/pkg/models"
)

// Dispatch is the outcome of one target delivery within an operation.
type Dispatch struct {
	// Role is the canonical role label the address was resolved from.
	Role string
	// Address is the resolved tmux target.
	Address models.Address
	// Outcome is success or failure.
	Outcome models.DispatchOutcome
	// Retries counts attempts beyond the first.
	Retries int
	// Err holds the final error for failed dispatches.
	Err error
	// Skipped marks a target that was resolved but not sent to (dry run).
	Skipped bool
}

// Result aggregates one orchestrator operation.
type Result struct {
	// Operation names the operation (directive, task, emergency, ...).
	Operation string
	// Mode is the delivery mode the operation used.
	Mode models.DeliveryMode
	// Dispatches lists per-target outcomes in dispatch order.
	Dispatches []Dispatch
	// Categories lists keyword categories that matched, for auto-distribute.
	Categories []string
	// AllocatedTo names the worker chosen by round-robin, when one was.
	AllocatedTo string
}

// Delivered counts successful dispatches.
func (r *Result) Delivered() int {
	n := 0
	for _, d := range r.Dispatches {
		if d.Outcome == models.OutcomeSuccess && !d.Skipped {
			n++
		}
	}
	return n
}

// Total counts all dispatches.
func (r *Result) Total() int { return len(r.Dispatches) }

// Tally formats the aggregate line, e.g. "4/5".
func (r *Result) Tally() string {
	return fmt.Sprintf("%d/%d", r.Delivered(), r.Total())
}

// AllFailed reports whether no target received the message. A dry run never
// counts as failed.
func (r *Result) AllFailed() bool {
	if len(r.Dispatches) == 0 {
		return true
	}
	for _, d := range r.Dispatches {
		if d.Skipped || d.Outcome == models.OutcomeSuccess {
			return false
		}
	}
	return true
}

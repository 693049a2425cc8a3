// Package dispatch implements the send-and-confirm delivery protocol and the
// retry layer above it. A delivery is at-least-once: the payload is pushed
// into the pane's input, but the target process gives no acknowledgment, so
// consumption is never guaranteed.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kensan196948G/fleetmux/internal/tmux"
	"github.com/Kensan196948G/fleetmux/pkg/models"
)

// Host is the slice of the tmux client the dispatcher needs.
type Host interface {
	SendKeys(ctx context.Context, target string, keys ...string) error
	CapturePane(ctx context.Context, target string) (string, error)
	ListPanes(ctx context.Context, session string) ([]tmux.Pane, error)
}

// Compile-time check that the real client satisfies the interface.
var _ Host = (*tmux.Client)(nil)

// Pacing holds the waits inserted between protocol steps. The delays exist
// to respect tmux's input queue, not for correctness.
type Pacing struct {
	// Interrupt is the wait after C-c.
	Interrupt time.Duration
	// Clear is the wait after C-u.
	Clear time.Duration
	// Line is the wait after each submitted line.
	Line time.Duration
	// Settle is the wait before the trailing cleanup.
	Settle time.Duration
}

// NormalPacing returns the standard paced intervals.
func NormalPacing() Pacing {
	return Pacing{
		Interrupt: 300 * time.Millisecond,
		Clear:     200 * time.Millisecond,
		Line:      300 * time.Millisecond,
		Settle:    500 * time.Millisecond,
	}
}

// InstantPacing returns the minimal-latency intervals used for urgent
// messages.
func InstantPacing() Pacing {
	return Pacing{
		Interrupt: 50 * time.Millisecond,
		Clear:     50 * time.Millisecond,
		Line:      50 * time.Millisecond,
		Settle:    50 * time.Millisecond,
	}
}

// Deliverer pushes text payloads into panes.
type Deliverer struct {
	host    Host
	normal  Pacing
	instant Pacing
	// sleep waits for d or until ctx is done. Replaced in tests so the
	// protocol runs without real time passing.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDeliverer creates a Deliverer with the given pacing profiles.
func NewDeliverer(host Host, normal, instant Pacing) *Deliverer {
	return &Deliverer{
		host:    host,
		normal:  normal,
		instant: instant,
		sleep:   ctxSleep,
	}
}

// SetSleeper overrides the wait function. Tests use this to avoid real
// pacing delays.
func (d *Deliverer) SetSleeper(sleep func(ctx context.Context, dur time.Duration) error) {
	d.sleep = sleep
}

// Deliver clears any pending input in the pane and transmits text.
// Multi-line payloads go line by line, each submitted separately with a
// pacing wait. Normal mode ends with a residue-prevention input clear;
// instant mode skips it.
func (d *Deliverer) Deliver(ctx context.Context, addr models.Address, text string, mode models.DeliveryMode) error {
	pacing := d.normal
	if mode == models.ModeInstant {
		pacing = d.instant
	}

	live, err := d.paneLive(ctx, addr)
	if err != nil {
		return err
	}
	if !live {
		return fmt.Errorf("%w: pane %s not present", ErrTargetUnavailable, addr)
	}

	target := addr.Target()

	// Abort any partial input the agent may be holding.
	if err := d.host.SendKeys(ctx, target, tmux.KeyInterrupt); err != nil {
		return fmt.Errorf("clear pending input: %w", err)
	}
	if err := d.sleep(ctx, pacing.Interrupt); err != nil {
		return err
	}
	if err := d.host.SendKeys(ctx, target, tmux.KeyClearLine); err != nil {
		return fmt.Errorf("clear input line: %w", err)
	}
	if err := d.sleep(ctx, pacing.Clear); err != nil {
		return err
	}

	for _, line := range strings.Split(text, "\n") {
		if err := d.host.SendKeys(ctx, target, line, tmux.KeyEnter); err != nil {
			return fmt.Errorf("transmit line: %w", err)
		}
		if err := d.sleep(ctx, pacing.Line); err != nil {
			return err
		}
	}

	if err := d.sleep(ctx, pacing.Settle); err != nil {
		return err
	}
	if mode == models.ModeNormal {
		// Residue prevention: wipe anything left on the input line.
		if err := d.host.SendKeys(ctx, target, tmux.KeyClearLine); err != nil {
			return fmt.Errorf("trailing input clear: %w", err)
		}
	}
	return nil
}

// ProbeReady reports whether the pane's process looks ready to receive
// input: an agent prompt (a line starting with ">") or an idle shell prompt.
func (d *Deliverer) ProbeReady(ctx context.Context, addr models.Address) bool {
	content, err := d.host.CapturePane(ctx, addr.Target())
	if err != nil {
		return false
	}
	return hasPrompt(content)
}

// paneLive checks that the pane index exists in the session right now.
func (d *Deliverer) paneLive(ctx context.Context, addr models.Address) (bool, error) {
	panes, err := d.host.ListPanes(ctx, addr.Session)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrTargetUnavailable, err)
	}
	for _, p := range panes {
		if p.Index == addr.Pane {
			return true, nil
		}
	}
	return false, nil
}

// hasPrompt scans captured pane output for a ready prompt. Agent TUIs show an
// input line starting with ">"; idle shells end their last non-blank line
// with $, %, or #.
func hasPrompt(output string) bool {
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, ">") {
			return true
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		return strings.HasSuffix(trimmed, "$") ||
			strings.HasSuffix(trimmed, "%") ||
			strings.HasSuffix(trimmed, "#")
	}
	return false
}

// ctxSleep blocks for d or until the context is canceled.
func ctxSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

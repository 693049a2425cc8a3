// Package tmux wraps the tmux commands fleetmux needs: session discovery,
// pane enumeration, keystroke injection, and pane capture. All calls go
// through the exec.CommandRunner seam so tests never need a real server.
package tmux

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Kensan196948G/fleetmux/internal/exec"
)

// Key names understood by tmux send-keys.
const (
	// KeyEnter submits the current input line.
	KeyEnter = "Enter"
	// KeyInterrupt sends C-c to abort any in-flight input or command.
	KeyInterrupt = "C-c"
	// KeyClearLine sends C-u to wipe the input line.
	KeyClearLine = "C-u"
)

// Pane is one addressable sub-region of a session as reported by list-panes.
type Pane struct {
	// Index is the pane index within window 0.
	Index int
	// Activity is the pane's last activity timestamp.
	Activity time.Time
	// CurrentCommand is the foreground command running in the pane.
	CurrentCommand string
}

// Client issues tmux commands through a CommandRunner.
type Client struct {
	runner exec.CommandRunner
}

// NewClient creates a Client using the given runner.
func NewClient(runner exec.CommandRunner) *Client {
	return &Client{runner: runner}
}

// SessionExists reports whether the named session is live.
// The result is never cached; liveness is queried per operation.
func (c *Client) SessionExists(ctx context.Context, name string) bool {
	_, err := c.runner.Run(ctx, "tmux", "has-session", "-t", name)
	return err == nil
}

// ListSessions returns the names of all live sessions.
// A missing or idle tmux server is reported as zero sessions, not an error.
func (c *Client) ListSessions(ctx context.Context) ([]string, error) {
	out, err := c.runner.Run(ctx, "tmux", "list-sessions", "-F", "#{session_name}")
	if err != nil {
		// tmux exits non-zero when no server is running.
		return nil, nil
	}
	var sessions []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			sessions = append(sessions, line)
		}
	}
	return sessions, nil
}

// ListPanes returns window 0's panes for a session, in ascending index order
// as tmux reports them.
func (c *Client) ListPanes(ctx context.Context, session string) ([]Pane, error) {
	out, err := c.runner.Run(ctx, "tmux", "list-panes", "-t", session+":0",
		"-F", "#{pane_index}\t#{pane_activity}\t#{pane_current_command}")
	if err != nil {
		return nil, fmt.Errorf("tmux list-panes: %w", err)
	}
	var panes []Pane
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pane, err := parsePaneLine(line)
		if err != nil {
			return nil, fmt.Errorf("parse pane line %q: %w", line, err)
		}
		panes = append(panes, pane)
	}
	return panes, nil
}

// parsePaneLine parses one tab-separated list-panes format line.
func parsePaneLine(line string) (Pane, error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 2 {
		return Pane{}, fmt.Errorf("expected at least 2 fields, got %d", len(parts))
	}
	index, err := strconv.Atoi(parts[0])
	if err != nil {
		return Pane{}, fmt.Errorf("pane index: %w", err)
	}
	activity, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Pane{}, fmt.Errorf("pane activity: %w", err)
	}
	pane := Pane{Index: index, Activity: time.Unix(activity, 0)}
	if len(parts) == 3 {
		pane.CurrentCommand = parts[2]
	}
	return pane, nil
}

// SendKeys injects the given keys into a pane target ({session}:0.{pane}).
// Literal text and key names (Enter, C-c, C-u) may be mixed.
func (c *Client) SendKeys(ctx context.Context, target string, keys ...string) error {
	args := append([]string{"send-keys", "-t", target}, keys...)
	if _, err := c.runner.Run(ctx, "tmux", args...); err != nil {
		return fmt.Errorf("tmux send-keys to %s: %w", target, err)
	}
	return nil
}

// CapturePane returns the visible contents of a pane.
func (c *Client) CapturePane(ctx context.Context, target string) (string, error) {
	out, err := c.runner.Run(ctx, "tmux", "capture-pane", "-p", "-t", target)
	if err != nil {
		return "", fmt.Errorf("tmux capture-pane %s: %w", target, err)
	}
	return string(out), nil
}

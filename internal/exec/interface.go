// Package exec provides an interface for command execution.
package exec

import (
	"context"
)

// CommandRunner defines the interface for running external commands.
// Every tmux invocation goes through this seam so tests can substitute
// a fake host for the real terminal multiplexer.
type CommandRunner interface {
	// Run executes a command and returns combined stdout/stderr output.
	Run(ctx context.Context, name string, args ...string) (output []byte, err error)
}

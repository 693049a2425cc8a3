package registry

import "errors"

// ErrUnknownRole indicates the caller passed a role or category name that is
// not recognized. This aborts the whole operation; it is never a silent no-op.
var ErrUnknownRole = errors.New("unknown role")

// ErrNoActiveWorkspace indicates no live tmux session matched any configured
// pattern. Dispatch cannot partially resolve; the operation short-circuits.
var ErrNoActiveWorkspace = errors.New("no active workspace")

package models

import "fmt"

// RoleKind identifies the position an agent holds in the fleet hierarchy.
type RoleKind string

const (
	// RoleLead is the strategic lead agent.
	RoleLead RoleKind = "lead"
	// RoleCoordinator is the coordinator agent that relays work to workers.
	RoleCoordinator RoleKind = "coordinator"
	// RoleWorker is a single worker agent, qualified by its index.
	RoleWorker RoleKind = "worker"
	// RoleAllWorkers addresses every worker at once.
	RoleAllWorkers RoleKind = "all-workers"
	// RoleCategory addresses the workers tagged with a specialist category.
	RoleCategory RoleKind = "category"
)

// Valid returns true if the role kind is a known value.
func (k RoleKind) Valid() bool {
	switch k {
	case RoleLead, RoleCoordinator, RoleWorker, RoleAllWorkers, RoleCategory:
		return true
	default:
		return false
	}
}

// Role is a logical dispatch target, parsed once at the registry boundary
// so the rest of the system never does string comparisons on role names.
type Role struct {
	// Kind is the role variant.
	Kind RoleKind
	// Index is the worker number for RoleWorker (1-based).
	Index int
	// Category is the specialist category name for RoleCategory.
	Category string
}

// String returns the canonical role name as accepted on the CLI.
func (r Role) String() string {
	switch r.Kind {
	case RoleWorker:
		return fmt.Sprintf("worker-%d", r.Index)
	case RoleCategory:
		return r.Category
	default:
		return string(r.Kind)
	}
}

// Lead returns the lead role.
func Lead() Role { return Role{Kind: RoleLead} }

// Coordinator returns the coordinator role.
func Coordinator() Role { return Role{Kind: RoleCoordinator} }

// Worker returns the role for a single worker by 1-based index.
func Worker(index int) Role { return Role{Kind: RoleWorker, Index: index} }

// AllWorkers returns the role addressing every worker.
func AllWorkers() Role { return Role{Kind: RoleAllWorkers} }

// Category returns the role addressing workers tagged with a category.
func Category(name string) Role { return Role{Kind: RoleCategory, Category: name} }

// Address is a concrete tmux target: a live session plus a pane index.
type Address struct {
	// Session is the tmux session name.
	Session string `json:"session"`
	// Pane is the pane index within window 0.
	Pane int `json:"pane"`
}

// Target returns the tmux target string understood by send-keys and
// capture-pane ({session}:0.{pane}).
func (a Address) Target() string {
	return fmt.Sprintf("%s:0.%d", a.Session, a.Pane)
}

// String returns the same form as Target for logging.
func (a Address) String() string { return a.Target() }

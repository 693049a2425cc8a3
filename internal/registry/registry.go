// Package registry resolves logical role names to concrete tmux addresses.
// Role strings are parsed once at this boundary into models.Role values;
// nothing downstream compares role names again.
package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Kensan196948G/fleetmux/internal/tmux"
	"github.com/Kensan196948G/fleetmux/pkg/models"
)

// WorkerSlot describes one worker pane and its specialist categories.
type WorkerSlot struct {
	// Pane is the pane index within window 0.
	Pane int
	// Specialties lists the categories this worker is tagged with.
	Specialties []string
}

// Topology maps fleet roles onto pane indexes. It is provisioning-time
// data supplied by configuration; the registry only reads it.
type Topology struct {
	// LeadPane is the strategic lead's pane index.
	LeadPane int
	// CoordinatorPane is the coordinator's pane index.
	CoordinatorPane int
	// Workers lists the worker panes in ascending index order.
	Workers []WorkerSlot
}

// SessionLister is the slice of the tmux client the registry needs.
type SessionLister interface {
	SessionExists(ctx context.Context, name string) bool
	ListSessions(ctx context.Context) ([]string, error)
}

// Compile-time check that the real client satisfies the interface.
var _ SessionLister = (*tmux.Client)(nil)

// Registry resolves roles against live tmux state.
type Registry struct {
	host     SessionLister
	patterns []string
	topology Topology
}

// New creates a Registry. Patterns are tried in declaration order: the first
// live session matching a pattern wins (first-match-wins, not best-match).
func New(host SessionLister, patterns []string, topology Topology) *Registry {
	return &Registry{host: host, patterns: patterns, topology: topology}
}

// ParseRole converts a role or category string from the CLI into a Role.
// Recognized forms: "lead", "coordinator", "all-workers", "worker-N" with a
// positive N, and any category name present in the topology.
func (r *Registry) ParseRole(s string) (models.Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "lead":
		return models.Lead(), nil
	case "coordinator":
		return models.Coordinator(), nil
	case "all-workers":
		return models.AllWorkers(), nil
	}
	if rest, ok := strings.CutPrefix(name, "worker-"); ok {
		index, err := strconv.Atoi(rest)
		if err != nil || index < 1 || index > len(r.topology.Workers) {
			return models.Role{}, fmt.Errorf("%w: %q", ErrUnknownRole, s)
		}
		return models.Worker(index), nil
	}
	for _, w := range r.topology.Workers {
		for _, cat := range w.Specialties {
			if strings.EqualFold(cat, name) {
				return models.Category(name), nil
			}
		}
	}
	return models.Role{}, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// ActiveSession returns the first live session matching the configured
// patterns. Exact names match directly; glob metacharacters are honored.
func (r *Registry) ActiveSession(ctx context.Context) (string, error) {
	sessions, err := r.host.ListSessions(ctx)
	if err != nil {
		return "", fmt.Errorf("list sessions: %w", err)
	}
	for _, pattern := range r.patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			if r.host.SessionExists(ctx, pattern) {
				return pattern, nil
			}
			continue
		}
		for _, session := range sessions {
			if ok, _ := filepath.Match(pattern, session); ok {
				return session, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no live session matches %v", ErrNoActiveWorkspace, r.patterns)
}

// Resolve maps a role to its concrete addresses in the active session.
// Multi-slot roles come back in ascending pane index order.
func (r *Registry) Resolve(ctx context.Context, role models.Role) ([]models.Address, error) {
	session, err := r.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	return r.resolveIn(session, role)
}

// resolveIn resolves within an already-selected session so that one
// orchestrator operation queries liveness exactly once.
func (r *Registry) resolveIn(session string, role models.Role) ([]models.Address, error) {
	switch role.Kind {
	case models.RoleLead:
		return []models.Address{{Session: session, Pane: r.topology.LeadPane}}, nil
	case models.RoleCoordinator:
		return []models.Address{{Session: session, Pane: r.topology.CoordinatorPane}}, nil
	case models.RoleWorker:
		if role.Index < 1 || role.Index > len(r.topology.Workers) {
			return nil, fmt.Errorf("%w: worker-%d", ErrUnknownRole, role.Index)
		}
		return []models.Address{{Session: session, Pane: r.topology.Workers[role.Index-1].Pane}}, nil
	case models.RoleAllWorkers:
		addrs := make([]models.Address, 0, len(r.topology.Workers))
		for _, w := range r.topology.Workers {
			addrs = append(addrs, models.Address{Session: session, Pane: w.Pane})
		}
		sortByPane(addrs)
		return addrs, nil
	case models.RoleCategory:
		var addrs []models.Address
		for _, w := range r.topology.Workers {
			for _, cat := range w.Specialties {
				if strings.EqualFold(cat, role.Category) {
					addrs = append(addrs, models.Address{Session: session, Pane: w.Pane})
					break
				}
			}
		}
		if len(addrs) == 0 {
			return nil, fmt.Errorf("%w: no worker tagged %q", ErrUnknownRole, role.Category)
		}
		sortByPane(addrs)
		return addrs, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role.String())
	}
}

// ResolveAll resolves several roles against a single liveness snapshot,
// preserving the given role order. Used by broadcasts so all targets come
// from the same session query.
func (r *Registry) ResolveAll(ctx context.Context, roles ...models.Role) ([]Resolved, error) {
	session, err := r.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	var out []Resolved
	for _, role := range roles {
		addrs, err := r.resolveIn(session, role)
		if err != nil {
			return nil, err
		}
		for _, addr := range addrs {
			label := role.String()
			if role.Kind == models.RoleAllWorkers || role.Kind == models.RoleCategory {
				label = models.Worker(r.workerIndexForPane(addr.Pane)).String()
			}
			out = append(out, Resolved{Role: label, Address: addr})
		}
	}
	return out, nil
}

// Resolved pairs a concrete address with the role label it was derived from,
// for audit records and outcome lines.
type Resolved struct {
	Role    string
	Address models.Address
}

// WorkerCount returns the size of the general worker pool.
func (r *Registry) WorkerCount() int {
	return len(r.topology.Workers)
}

// Categories returns the distinct specialist categories in declaration order.
func (r *Registry) Categories() []string {
	seen := make(map[string]struct{})
	var cats []string
	for _, w := range r.topology.Workers {
		for _, cat := range w.Specialties {
			key := strings.ToLower(cat)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			cats = append(cats, key)
		}
	}
	return cats
}

// workerIndexForPane maps a pane index back to its 1-based worker number.
func (r *Registry) workerIndexForPane(pane int) int {
	for i, w := range r.topology.Workers {
		if w.Pane == pane {
			return i + 1
		}
	}
	return 0
}

func sortByPane(addrs []models.Address) {
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Pane < addrs[j].Pane })
}

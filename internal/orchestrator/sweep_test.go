package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/Kensan196948G/fleetmux/internal/state"
	"github.com/Kensan196948G/fleetmux/internal/tmux"
	"github.com/Kensan196948G/fleetmux/pkg/models"
)

func TestActivitySweep(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-10 * time.Minute)
	old := now.Add(-2 * time.Hour)

	fleet := newFakeFleet("fleetmux")
	fleet.panes["fleetmux"] = []tmux.Pane{
		{Index: 0, Activity: fresh}, // lead active recently
		{Index: 1, Activity: old},
		{Index: 2, Activity: old},
		{Index: 3, Activity: old},
		{Index: 4, Activity: old},
	}

	store := state.NewMemoryStore()
	// The coordinator's pane looks idle but it was dispatched to recently.
	if err := store.AppendDispatch(models.DispatchRecord{
		ID:        "seed-1",
		Timestamp: fresh,
		Operation: OpTask,
		Role:      "coordinator",
		Address:   models.Address{Session: "fleetmux", Pane: 1},
		Outcome:   models.OutcomeSuccess,
	}); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	orch := newTestOrchestrator(t, fleet, store)

	report, err := orch.ActivitySweep(context.Background())
	if err != nil {
		t.Fatalf("ActivitySweep() error = %v", err)
	}

	if report.Session != "fleetmux" {
		t.Errorf("Session = %s, want fleetmux", report.Session)
	}
	if len(report.Roles) != 5 {
		t.Fatalf("roles checked = %d, want 5", len(report.Roles))
	}

	stale := report.StaleRoles()
	want := []string{"worker-1", "worker-2", "worker-3"}
	if len(stale) != len(want) {
		t.Fatalf("StaleRoles() = %v, want %v", stale, want)
	}
	for i := range want {
		if stale[i] != want[i] {
			t.Errorf("StaleRoles()[%d] = %s, want %s", i, stale[i], want[i])
		}
	}

	for _, role := range report.Roles {
		switch role.Role {
		case "lead", "coordinator":
			if role.Stale {
				t.Errorf("%s flagged stale despite recent activity", role.Role)
			}
			if role.Pinged {
				t.Errorf("%s pinged despite being fresh", role.Role)
			}
		default:
			if !role.Pinged {
				t.Errorf("%s stale but not pinged", role.Role)
			}
			if role.PingErr != nil {
				t.Errorf("%s ping failed: %v", role.Role, role.PingErr)
			}
		}
	}

	// Stale workers received a responsiveness check.
	for _, target := range []string{"fleetmux:0.2", "fleetmux:0.3", "fleetmux:0.4"} {
		if len(fleet.sent[target]) == 0 {
			t.Errorf("no ping delivered to %s", target)
		}
	}
	if len(fleet.sent["fleetmux:0.0"]) != 0 {
		t.Error("lead received a ping despite recent activity")
	}

	// Each ping leaves a sweep audit record.
	records, _ := store.RecentDispatches(10)
	pings := 0
	for _, rec := range records {
		if rec.Operation == OpSweepPing {
			pings++
		}
	}
	if pings != 3 {
		t.Errorf("sweep-ping records = %d, want 3", pings)
	}
}

func TestActivitySweepNoHistoryIsStale(t *testing.T) {
	fleet := newFakeFleet("fleetmux")
	// Panes exist but report zero activity timestamps.
	fleet.panes["fleetmux"] = []tmux.Pane{{Index: 0}, {Index: 1}, {Index: 2}, {Index: 3}, {Index: 4}}

	orch := newTestOrchestrator(t, fleet, state.NewMemoryStore())

	report, err := orch.ActivitySweep(context.Background())
	if err != nil {
		t.Fatalf("ActivitySweep() error = %v", err)
	}
	if got := len(report.StaleRoles()); got != 5 {
		t.Errorf("StaleRoles() length = %d, want 5 when nothing was ever seen", got)
	}
}

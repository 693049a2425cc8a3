package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Kensan196948G/fleetmux/internal/orchestrator"
	"github.com/Kensan196948G/fleetmux/pkg/models"
)

type fakeSweeper struct {
	report *orchestrator.SweepReport
	err    error
}

func (f *fakeSweeper) ActivitySweep(ctx context.Context) (*orchestrator.SweepReport, error) {
	return f.report, f.err
}

func sampleReport() *orchestrator.SweepReport {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &orchestrator.SweepReport{
		SweptAt: now,
		Session: "fleetmux",
		Roles: []orchestrator.RoleActivity{
			{
				Role:         "lead",
				Address:      models.Address{Session: "fleetmux", Pane: 0},
				LastActivity: now.Add(-5 * time.Minute),
			},
			{
				Role:         "worker-1",
				Address:      models.Address{Session: "fleetmux", Pane: 2},
				LastDispatch: now.Add(-2 * time.Hour),
				Stale:        true,
				Pinged:       true,
			},
		},
	}
}

func TestMonitorShowsSweepResults(t *testing.T) {
	m := NewMonitor(&fakeSweeper{report: sampleReport()}, time.Minute)

	model, _ := m.Update(SweepMsg{Report: sampleReport()})
	view := model.View()

	for _, want := range []string{"lead", "worker-1", "fleetmux:0.2", "STALE", "1 stale role(s) pinged"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestMonitorShowsSweepError(t *testing.T) {
	m := NewMonitor(&fakeSweeper{err: errors.New("no live session")}, time.Minute)

	model, _ := m.Update(SweepMsg{Err: errors.New("no live session")})
	view := model.View()

	if !strings.Contains(view, "sweep failed") {
		t.Error("view missing sweep failure status")
	}
}

func TestMonitorQuits(t *testing.T) {
	m := NewMonitor(&fakeSweeper{report: sampleReport()}, time.Minute)

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if view := model.View(); view != "" {
		t.Errorf("quitting view = %q, want empty", view)
	}
}

func TestMonitorRulesReloadNotice(t *testing.T) {
	m := NewMonitor(&fakeSweeper{report: sampleReport()}, time.Minute)

	model, _ := m.Update(RulesReloadedMsg{})
	if !strings.Contains(model.View(), "keyword rules reloaded") {
		t.Error("view missing rules reload notice")
	}
}

func TestHumanSince(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"seconds", now.Add(-30 * time.Second), "just now"},
		{"minutes", now.Add(-12 * time.Minute), "12m ago"},
		{"hours", now.Add(-90 * time.Minute), "1h30m ago"},
		{"days", now.Add(-49 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := humanSince(now, tt.t); got != tt.want {
				t.Errorf("humanSince() = %q, want %q", got, tt.want)
			}
		})
	}
}

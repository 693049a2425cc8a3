package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/Kensan196948G/fleetmux/internal/registry"
	"github.com/Kensan196948G/fleetmux/pkg/models"
)

// RoleActivity is one role's sweep status.
type RoleActivity struct {
	// Role is the canonical role label.
	Role string
	// Address is the role's resolved tmux target.
	Address models.Address
	// LastDispatch is the timestamp of the newest audit record for the
	// role. Zero when the log has none.
	LastDispatch time.Time
	// LastActivity is the pane's last observed activity. Zero when the
	// pane source is unavailable.
	LastActivity time.Time
	// Stale marks a role whose inactivity gap exceeded the threshold.
	Stale bool
	// Pinged marks a stale role that was sent a responsiveness check.
	Pinged bool
	// PingErr holds the delivery error when the ping failed.
	PingErr error
}

// LastSeen returns the newer of the role's dispatch and pane timestamps.
func (a RoleActivity) LastSeen() time.Time {
	if a.LastActivity.After(a.LastDispatch) {
		return a.LastActivity
	}
	return a.LastDispatch
}

// SweepReport is the result of one activity sweep.
type SweepReport struct {
	// SweptAt is when the sweep ran.
	SweptAt time.Time
	// Session is the workspace that was swept.
	Session string
	// Roles lists per-role status, single-slot roles in topology order.
	Roles []RoleActivity
}

// StaleRoles returns the labels of roles flagged stale.
func (r *SweepReport) StaleRoles() []string {
	var out []string
	for _, role := range r.Roles {
		if role.Stale {
			out = append(out, role.Role)
		}
	}
	return out
}

// ActivitySweep checks every role's last dispatch record and pane activity.
// Roles quiet for longer than the threshold get a low-priority
// responsiveness ping and come back flagged in the report. A role with no
// history at all counts as stale.
func (o *Orchestrator) ActivitySweep(ctx context.Context) (*SweepReport, error) {
	session, err := o.reg.ActiveSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	roles := []models.Role{models.Lead(), models.Coordinator()}
	for i := 1; i <= o.reg.WorkerCount(); i++ {
		roles = append(roles, models.Worker(i))
	}
	targets, err := o.reg.ResolveAll(ctx, roles...)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	latest, err := o.store.LatestDispatchByRole()
	if err != nil {
		return nil, fmt.Errorf("sweep: reading audit log: %w", err)
	}

	activity := map[int]time.Time{}
	if o.panes != nil {
		panes, err := o.panes.ListPanes(ctx, session)
		if err != nil {
			return nil, fmt.Errorf("sweep: listing panes: %w", err)
		}
		for _, p := range panes {
			activity[p.Index] = p.Activity
		}
	}

	now := o.now()
	report := &SweepReport{SweptAt: now, Session: session}
	const ping = "[Responsiveness Check] No recent activity observed. Please report your status to the coordinator."

	for _, target := range targets {
		status := RoleActivity{Role: target.Role, Address: target.Address}
		if rec, ok := latest[target.Role]; ok {
			status.LastDispatch = rec.Timestamp
		}
		status.LastActivity = activity[target.Address.Pane]

		lastSeen := status.LastSeen()
		status.Stale = lastSeen.IsZero() || now.Sub(lastSeen) > o.staleAfter

		if status.Stale && !o.dryRun {
			sub := o.dispatchFramed(ctx, OpSweepPing, uniform([]registry.Resolved{target}, ping), models.ModeNormal)
			status.Pinged = true
			if len(sub.Dispatches) == 1 && sub.Dispatches[0].Err != nil {
				status.PingErr = sub.Dispatches[0].Err
			}
		}
		report.Roles = append(report.Roles, status)

		if ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	o.logger.Log("sweep: %d roles checked, %d stale", len(report.Roles), len(report.StaleRoles()))
	return report, nil
}

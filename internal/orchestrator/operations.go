package orchestrator

import (
	"context"
	"fmt"

	"github.com/Kensan196948G/fleetmux/internal/allocate"
	"github.com/Kensan196948G/fleetmux/internal/classify"
	"github.com/Kensan196948G/fleetmux/internal/registry"
	"github.com/Kensan196948G/fleetmux/pkg/models"
)

// Operation names recorded in the audit log.
const (
	OpDirective   = "directive"
	OpTask        = "task"
	OpSpecialized = "specialized"
	OpAuto        = "auto"
	OpCollect     = "collect-reports"
	OpEmergency   = "emergency"
	OpSend        = "send"
	OpSweepPing   = "sweep-ping"
)

// Directive relays a lead directive to the coordinator and every worker,
// then confirms the relay back to the lead pane. Urgent text escalates to an
// emergency broadcast instead.
func (o *Orchestrator) Directive(ctx context.Context, text string) (*Result, error) {
	if classify.IsUrgent(text) {
		o.logger.Log("directive escalated to emergency: %s", models.TruncatePreview(text))
		return o.EmergencyBroadcast(ctx, text)
	}

	targets, err := o.reg.ResolveAll(ctx, models.Coordinator(), models.AllWorkers(), models.Lead())
	if err != nil {
		return nil, fmt.Errorf("directive: %w", err)
	}

	lead := models.Lead().String()
	items := make([]framed, len(targets))
	for i, target := range targets {
		msg := "[Lead Directive] " + text
		if target.Role == lead {
			msg = "[Directive Relayed] " + text
		}
		items[i] = framed{target: target, text: msg}
	}
	return o.dispatchFramed(ctx, OpDirective, items, models.ModeNormal), nil
}

// Task sends a coordinator task to every worker.
func (o *Orchestrator) Task(ctx context.Context, text string) (*Result, error) {
	if classify.IsUrgent(text) {
		o.logger.Log("task escalated to emergency: %s", models.TruncatePreview(text))
		return o.EmergencyBroadcast(ctx, text)
	}

	targets, err := o.reg.ResolveAll(ctx, models.AllWorkers())
	if err != nil {
		return nil, fmt.Errorf("task: %w", err)
	}
	return o.dispatchFramed(ctx, OpTask, uniform(targets, "[Coordinator Task] "+text), models.ModeNormal), nil
}

// Specialized sends a task to the workers tagged with the given category.
func (o *Orchestrator) Specialized(ctx context.Context, category, text string) (*Result, error) {
	if classify.IsUrgent(text) {
		o.logger.Log("specialized escalated to emergency: %s", models.TruncatePreview(text))
		return o.EmergencyBroadcast(ctx, text)
	}

	role, err := o.reg.ParseRole(category)
	if err != nil {
		return nil, fmt.Errorf("specialized: %w", err)
	}
	if role.Kind != models.RoleCategory {
		return nil, fmt.Errorf("specialized: %w: %q is a role, not a category", registry.ErrUnknownRole, category)
	}

	targets, err := o.reg.ResolveAll(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("specialized: %w", err)
	}
	framedText := fmt.Sprintf("[%s Task] %s", role.Category, text)
	return o.dispatchFramed(ctx, OpSpecialized, uniform(targets, framedText), models.ModeNormal), nil
}

// AutoDistribute runs the keyword router over the task text. If exactly one
// specialist category matches it routes there; otherwise it round-robins the
// general worker pool. The round-robin cursor is untouched when keyword
// routing wins.
func (o *Orchestrator) AutoDistribute(ctx context.Context, text string) (*Result, error) {
	if classify.IsUrgent(text) {
		o.logger.Log("auto escalated to emergency: %s", models.TruncatePreview(text))
		return o.EmergencyBroadcast(ctx, text)
	}

	matches := o.router.Classify(text)
	var specialist []string
	for _, m := range matches {
		o.logger.Log("auto: keyword trigger %q -> %s", m.Pattern, m.Category)
		if m.Category != allocate.GeneralPool && o.hasWorkerCategory(m.Category) {
			specialist = append(specialist, m.Category)
		}
	}

	if len(specialist) == 1 {
		role := models.Category(specialist[0])
		targets, err := o.reg.ResolveAll(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("auto: %w", err)
		}
		framedText := fmt.Sprintf("[%s Task] %s", role.Category, text)
		result := o.dispatchFramed(ctx, OpAuto, uniform(targets, framedText), models.ModeNormal)
		result.Categories = specialist
		return result, nil
	}

	// Zero or ambiguous specialist matches: round-robin over the pool.
	targets, err := o.reg.ResolveAll(ctx, models.AllWorkers())
	if err != nil {
		return nil, fmt.Errorf("auto: %w", err)
	}
	addrs := make([]models.Address, len(targets))
	for i, t := range targets {
		addrs[i] = t.Address
	}
	chosen, err := o.alloc.Next(allocate.GeneralPool, addrs)
	if err != nil {
		return nil, fmt.Errorf("auto: %w", err)
	}
	for _, t := range targets {
		if t.Address == chosen {
			result := o.dispatchFramed(ctx, OpAuto, uniform([]registry.Resolved{t}, "[Task] "+text), models.ModeNormal)
			result.Categories = specialist
			result.AllocatedTo = t.Role
			return result, nil
		}
	}
	return nil, fmt.Errorf("auto: allocated address %s not in worker pool", chosen)
}

// CollectReports asks every worker for a progress report, then notifies the
// coordinator that collection was requested. It never waits for replies;
// the targets have no reply channel.
func (o *Orchestrator) CollectReports(ctx context.Context) (*Result, error) {
	targets, err := o.reg.ResolveAll(ctx, models.AllWorkers(), models.Coordinator())
	if err != nil {
		return nil, fmt.Errorf("collect-reports: %w", err)
	}

	const request = "[Report Request] Send your current progress report to the coordinator."
	const notice = "[Collection Notice] Progress reports were requested from all workers."
	coordinator := models.Coordinator().String()

	items := make([]framed, len(targets))
	for i, target := range targets {
		text := request
		if target.Role == coordinator {
			text = notice
		}
		items[i] = framed{target: target, text: text}
	}
	return o.dispatchFramed(ctx, OpCollect, items, models.ModeNormal), nil
}

// EmergencyBroadcast sends an emergency message to every known address in
// instant mode with a uniform template, bypassing per-role framing.
func (o *Orchestrator) EmergencyBroadcast(ctx context.Context, text string) (*Result, error) {
	targets, err := o.reg.ResolveAll(ctx, models.Lead(), models.Coordinator(), models.AllWorkers())
	if err != nil {
		return nil, fmt.Errorf("emergency: %w", err)
	}
	return o.dispatchFramed(ctx, OpEmergency, uniform(targets, "🚨 EMERGENCY: "+text), models.ModeInstant), nil
}

// Send dispatches raw text to a single role without framing. Urgent text is
// sent in instant mode but stays on the requested targets.
func (o *Orchestrator) Send(ctx context.Context, roleName, text string) (*Result, error) {
	role, err := o.reg.ParseRole(roleName)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	targets, err := o.reg.ResolveAll(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	mode := models.ModeNormal
	if classify.IsUrgent(text) {
		mode = models.ModeInstant
	}
	return o.dispatchFramed(ctx, OpSend, uniform(targets, text), mode), nil
}

// hasWorkerCategory reports whether any worker is tagged with the category.
func (o *Orchestrator) hasWorkerCategory(category string) bool {
	for _, cat := range o.reg.Categories() {
		if cat == category {
			return true
		}
	}
	return false
}

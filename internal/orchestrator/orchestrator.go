package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Kensan196948G/fleetmux/internal/allocate"
	"github.com/Kensan196948G/fleetmux/internal/classify"
	"github.com/Kensan196948G/fleetmux/internal/dispatch"
	"github.com/Kensan196948G/fleetmux/internal/registry"
	"github.com/Kensan196948G/fleetmux/internal/state"
	"github.com/Kensan196948G/fleetmux/internal/tmux"
	"github.com/Kensan196948G/fleetmux/pkg/models"
)

// PaneLister is the slice of the tmux client the activity sweep needs.
type PaneLister interface {
	ListPanes(ctx context.Context, session string) ([]tmux.Pane, error)
}

// Compile-time check that the real client satisfies the interface.
var _ PaneLister = (*tmux.Client)(nil)

// RequiredConfig contains the minimal required configuration for an
// Orchestrator. All fields are required and have no defaults.
type RequiredConfig struct {
	// Registry resolves roles to addresses.
	Registry *registry.Registry
	// Sender performs retried deliveries.
	Sender *dispatch.Sender
	// Store persists audit records and allocation cursors.
	Store state.Store
}

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*orchestratorOptions)

type orchestratorOptions struct {
	router     *classify.Router
	panes      PaneLister
	logger     *DebugLogger
	staleAfter time.Duration
	now        func() time.Time
	newID      func() string
	dryRun     bool
}

// WithRouter sets the keyword router used by auto-distribute.
func WithRouter(r *classify.Router) Option {
	return func(o *orchestratorOptions) { o.router = r }
}

// WithPaneLister sets the pane source for activity sweeps.
func WithPaneLister(p PaneLister) Option {
	return func(o *orchestratorOptions) { o.panes = p }
}

// WithLogger sets the debug logger.
func WithLogger(l *DebugLogger) Option {
	return func(o *orchestratorOptions) { o.logger = l }
}

// WithStaleAfter sets the inactivity gap that triggers a sweep ping.
func WithStaleAfter(d time.Duration) Option {
	return func(o *orchestratorOptions) { o.staleAfter = d }
}

// WithClock injects the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(o *orchestratorOptions) { o.now = now }
}

// WithIDFunc injects the record ID generator (for testing).
func WithIDFunc(newID func() string) Option {
	return func(o *orchestratorOptions) { o.newID = newID }
}

// WithDryRun resolves targets and reports them without sending.
func WithDryRun(dryRun bool) Option {
	return func(o *orchestratorOptions) { o.dryRun = dryRun }
}

// Orchestrator runs named fleet operations: directive, task, specialized,
// auto-distribute, collect-reports, emergency broadcast, single sends, and
// the activity sweep. Operations run sequentially; targets within one
// operation are addressed one at a time in resolution order.
type Orchestrator struct {
	reg        *registry.Registry
	sender     *dispatch.Sender
	store      state.Store
	router     *classify.Router
	alloc      *allocate.Allocator
	panes      PaneLister
	logger     *DebugLogger
	staleAfter time.Duration
	now        func() time.Time
	newID      func() string
	dryRun     bool
}

// New creates an Orchestrator from required config plus options.
func New(cfg RequiredConfig, opts ...Option) (*Orchestrator, error) {
	if cfg.Registry == nil || cfg.Sender == nil || cfg.Store == nil {
		return nil, fmt.Errorf("orchestrator: registry, sender, and store are required")
	}

	o := &orchestratorOptions{
		staleAfter: 30 * time.Minute,
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     NopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.router == nil {
		router, err := classify.NewRouter(classify.DefaultRules())
		if err != nil {
			return nil, fmt.Errorf("orchestrator: compiling default rules: %w", err)
		}
		o.router = router
	}

	return &Orchestrator{
		reg:        cfg.Registry,
		sender:     cfg.Sender,
		store:      cfg.Store,
		router:     o.router,
		alloc:      allocate.New(cfg.Store),
		panes:      o.panes,
		logger:     o.logger,
		staleAfter: o.staleAfter,
		now:        o.now,
		newID:      o.newID,
		dryRun:     o.dryRun,
	}, nil
}

// SetRouter swaps the keyword router. Used by monitor --watch when the
// rules file changes on disk.
func (o *Orchestrator) SetRouter(r *classify.Router) {
	o.router = r
}

// framed pairs one resolved target with the exact text it receives.
// Operations that vary framing per role build these explicitly.
type framed struct {
	target registry.Resolved
	text   string
}

// uniform frames every target with the same text.
func uniform(targets []registry.Resolved, text string) []framed {
	out := make([]framed, len(targets))
	for i, t := range targets {
		out[i] = framed{target: t, text: text}
	}
	return out
}

// dispatchFramed delivers to each target in order, appending one audit
// record per target regardless of outcome. Individual failures do not stop
// the fan-out.
func (o *Orchestrator) dispatchFramed(ctx context.Context, operation string, items []framed, mode models.DeliveryMode) *Result {
	result := &Result{Operation: operation, Mode: mode}
	for _, item := range items {
		target := item.target
		d := Dispatch{Role: target.Role, Address: target.Address}

		if o.dryRun {
			d.Skipped = true
			d.Outcome = models.OutcomeSuccess
			result.Dispatches = append(result.Dispatches, d)
			continue
		}

		retries, err := o.sender.DeliverWithRetry(ctx, target.Address, item.text, mode)
		d.Retries = retries
		if err != nil {
			d.Outcome = models.OutcomeFailure
			d.Err = err
			log.Printf("[orchestrator] %s: %s (%s) failed after %d retries: %v",
				operation, target.Role, target.Address, retries, err)
		} else {
			d.Outcome = models.OutcomeSuccess
		}
		o.appendRecord(operation, target, item.text, mode, d)
		result.Dispatches = append(result.Dispatches, d)

		if ctx.Err() != nil {
			break
		}
	}
	o.logger.Log("%s: %s delivered", operation, result.Tally())
	return result
}

// appendRecord writes one audit entry. Audit failures are logged but never
// fail the dispatch itself.
func (o *Orchestrator) appendRecord(operation string, target registry.Resolved, text string, mode models.DeliveryMode, d Dispatch) {
	record := models.DispatchRecord{
		ID:        o.newID(),
		Timestamp: o.now(),
		Operation: operation,
		Role:      target.Role,
		Address:   target.Address,
		Preview:   models.TruncatePreview(text),
		Mode:      mode,
		Outcome:   d.Outcome,
		Retries:   d.Retries,
	}
	if d.Err != nil {
		record.Error = d.Err.Error()
	}
	if err := o.store.AppendDispatch(record); err != nil {
		log.Printf("[orchestrator] audit append failed: %v", err)
	}
}

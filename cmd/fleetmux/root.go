package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Kensan196948G/fleetmux/internal/classify"
	"github.com/Kensan196948G/fleetmux/internal/config"
	"github.com/Kensan196948G/fleetmux/internal/dispatch"
	iexec "github.com/Kensan196948G/fleetmux/internal/exec"
	"github.com/Kensan196948G/fleetmux/internal/orchestrator"
	"github.com/Kensan196948G/fleetmux/internal/registry"
	"github.com/Kensan196948G/fleetmux/internal/state"
	"github.com/Kensan196948G/fleetmux/internal/tmux"
)

var dryRun bool

// CheckTmux verifies that the tmux binary is available in PATH.
func CheckTmux() error {
	_, err := exec.LookPath("tmux")
	if err != nil {
		return fmt.Errorf("tmux not found in PATH\n\n" +
			"fleetmux drives agent panes through tmux and cannot run without it.\n\n" +
			"Install it with your package manager, e.g.:\n" +
			"  apt install tmux\n" +
			"  brew install tmux")
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "fleetmux",
	Short: "Hierarchical message dispatch for tmux agent fleets",
	Long: `fleetmux coordinates a small hierarchy of interactive agent processes
living in tmux panes: one strategic lead, one coordinator, and several
specialist workers.

It resolves logical roles to live panes, pushes messages through tmux
send-keys with pacing and retries, routes tasks by keyword or round-robin,
and keeps an append-only audit log of every dispatch.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Resolve and print targets without sending")

	rootCmd.AddCommand(directiveCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(specializedCmd)
	rootCmd.AddCommand(autoCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(emergencyCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// fleet bundles everything a command needs, plus the cleanup to run when done.
type fleet struct {
	cfg  *config.Config
	orch *orchestrator.Orchestrator
}

// buildFleet wires the orchestrator from configuration and live tmux state.
func buildFleet() (*fleet, func(), error) {
	if err := CheckTmux(); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	client := tmux.NewClient(iexec.NewRunner())
	reg := registry.New(client, cfg.Session.Patterns, cfg.Registry())

	normal := dispatch.NormalPacing()
	normal.Line = cfg.Delivery.LineWait
	normal.Settle = cfg.Delivery.SettleWait
	deliverer := dispatch.NewDeliverer(client, normal, dispatch.InstantPacing())
	sender := dispatch.NewSender(deliverer, dispatch.RetryPolicy{
		MaxAttempts: cfg.Delivery.RetryAttempts,
		Delay:       cfg.Delivery.RetryDelay,
	})

	db, err := state.Open(cfg.ResolveDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open state database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate state database: %w", err)
	}

	router, err := loadRouter(cfg)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	cwd, _ := os.Getwd()
	logger := orchestrator.NewDebugLoggerForProject(cwd)

	orch, err := orchestrator.New(
		orchestrator.RequiredConfig{Registry: reg, Sender: sender, Store: db},
		orchestrator.WithRouter(router),
		orchestrator.WithPaneLister(client),
		orchestrator.WithLogger(logger),
		orchestrator.WithStaleAfter(cfg.Sweep.StaleAfter),
		orchestrator.WithDryRun(dryRun),
	)
	if err != nil {
		db.Close()
		logger.Close()
		return nil, nil, err
	}

	cleanup := func() {
		db.Close()
		logger.Close()
	}
	return &fleet{cfg: cfg, orch: orch}, cleanup, nil
}

// loadRouter compiles the configured keyword rules, or the defaults.
func loadRouter(cfg *config.Config) (*classify.Router, error) {
	rules := classify.DefaultRules()
	if cfg.Keywords.RulesPath != "" {
		loaded, err := classify.LoadRules(cfg.Keywords.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("keyword rules: %w", err)
		}
		rules = loaded
	}
	return classify.NewRouter(rules)
}

// printResult writes per-target outcome lines and the aggregate tally.
// Returns an error when no target received the message, so the command
// exits non-zero.
func printResult(result *orchestrator.Result) error {
	for _, d := range result.Dispatches {
		switch {
		case d.Skipped:
			fmt.Printf("%s %-12s %s (dry run)\n", color.YellowString("·"), d.Role, d.Address)
		case d.Err != nil:
			fmt.Printf("%s %-12s %s: %v\n", color.RedString("✗"), d.Role, d.Address, d.Err)
		case d.Retries > 0:
			fmt.Printf("%s %-12s %s (after %d retries)\n", color.GreenString("✓"), d.Role, d.Address, d.Retries)
		default:
			fmt.Printf("%s %-12s %s\n", color.GreenString("✓"), d.Role, d.Address)
		}
	}

	fmt.Printf("%s delivered\n", result.Tally())
	if result.AllFailed() {
		return fmt.Errorf("no targets received the message")
	}
	return nil
}

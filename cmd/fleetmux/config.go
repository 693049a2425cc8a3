package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kensan196948G/fleetmux/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the effective configuration after merging defaults, the user
config (~/.config/fleetmux/config.yaml), the project config
(.fleetmux.yaml found in the current directory or a parent), and
FLEETMUX_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		displayConfig(cfg)
		return nil
	},
}

func displayConfig(cfg *config.Config) {
	fmt.Printf("session.patterns: %s\n", strings.Join(cfg.Session.Patterns, ", "))
	fmt.Printf("topology.lead_pane: %d\n", cfg.Topology.LeadPane)
	fmt.Printf("topology.coordinator_pane: %d\n", cfg.Topology.CoordinatorPane)
	for i, w := range cfg.Topology.Workers {
		fmt.Printf("topology.workers[%d]: pane %d (%s)\n", i, w.Pane, strings.Join(w.Specialties, ", "))
	}
	fmt.Printf("delivery.retry_attempts: %d\n", cfg.Delivery.RetryAttempts)
	fmt.Printf("delivery.retry_delay: %s\n", cfg.Delivery.RetryDelay)
	fmt.Printf("delivery.line_wait: %s\n", cfg.Delivery.LineWait)
	fmt.Printf("delivery.settle_wait: %s\n", cfg.Delivery.SettleWait)
	fmt.Printf("sweep.stale_after: %s\n", cfg.Sweep.StaleAfter)
	fmt.Printf("sweep.interval: %s\n", cfg.Sweep.Interval)
	fmt.Printf("state.db_path: %s\n", orDefault(cfg.State.DBPath, cfg.ResolveDBPath()+" (auto)"))
	fmt.Printf("keywords.rules_path: %s\n", orDefault(cfg.Keywords.RulesPath, "(built-in rules)"))

	if project := config.GetProjectConfigPath(); project != "" {
		fmt.Fprintf(os.Stderr, "\nproject config: %s\n", project)
	}
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

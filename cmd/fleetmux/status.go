package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Kensan196948G/fleetmux/internal/config"
	iexec "github.com/Kensan196948G/fleetmux/internal/exec"
	"github.com/Kensan196948G/fleetmux/internal/registry"
	"github.com/Kensan196948G/fleetmux/internal/state"
	"github.com/Kensan196948G/fleetmux/internal/tmux"
	"github.com/Kensan196948G/fleetmux/pkg/models"
)

var statusTail int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show resolved roles, pane liveness, and recent dispatches",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusTail, "tail", 10, "Number of recent audit entries to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := CheckTmux(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := tmux.NewClient(iexec.NewRunner())
	reg := registry.New(client, cfg.Session.Patterns, cfg.Registry())

	ctx := cmd.Context()
	session, err := reg.ActiveSession(ctx)
	if err != nil {
		if errors.Is(err, registry.ErrNoActiveWorkspace) {
			fmt.Printf("%s no live session matches %v\n", color.RedString("✗"), cfg.Session.Patterns)
			return displayAuditTail(cfg)
		}
		return err
	}
	fmt.Printf("%s session %s\n\n", color.GreenString("✓"), color.CyanString(session))

	roles := []models.Role{models.Lead(), models.Coordinator()}
	for i := 1; i <= reg.WorkerCount(); i++ {
		roles = append(roles, models.Worker(i))
	}
	targets, err := reg.ResolveAll(ctx, roles...)
	if err != nil {
		return err
	}

	panes, err := client.ListPanes(ctx, session)
	if err != nil {
		return fmt.Errorf("list panes: %w", err)
	}
	live := map[int]tmux.Pane{}
	for _, p := range panes {
		live[p.Index] = p
	}

	fmt.Println("Roles:")
	for _, target := range targets {
		pane, ok := live[target.Address.Pane]
		switch {
		case !ok:
			fmt.Printf("  %s %-12s %s (pane missing)\n", color.RedString("✗"), target.Role, target.Address)
		case pane.CurrentCommand != "":
			fmt.Printf("  %s %-12s %s running %s\n", color.GreenString("✓"), target.Role, target.Address, pane.CurrentCommand)
		default:
			fmt.Printf("  %s %-12s %s\n", color.GreenString("✓"), target.Role, target.Address)
		}
	}
	fmt.Println()

	return displayAuditTail(cfg)
}

// displayAuditTail prints the newest dispatch records, if a state database
// exists yet.
func displayAuditTail(cfg *config.Config) error {
	dbPath := cfg.ResolveDBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No dispatches recorded yet.")
		return nil
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate state database: %w", err)
	}

	records, err := db.RecentDispatches(statusTail)
	if err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No dispatches recorded yet.")
		return nil
	}

	fmt.Printf("Recent dispatches (newest first):\n")
	for _, rec := range records {
		mark := color.GreenString("✓")
		if rec.Outcome == models.OutcomeFailure {
			mark = color.RedString("✗")
		}
		fmt.Printf("  %s %s %-15s %-12s %s\n",
			mark,
			rec.Timestamp.Local().Format("15:04:05"),
			rec.Operation,
			rec.Role,
			rec.Preview,
		)
	}
	return nil
}

package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Kensan196948G/fleetmux/internal/tui"
)

var (
	monitorWatch    bool
	monitorInterval time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Check role activity and ping stale panes",
	Long: `Run one activity sweep: compare each role's last dispatch and pane
activity against the staleness threshold, and send a responsiveness ping
to any role that has gone quiet.

With --watch, a terminal view stays open and repeats the sweep on an
interval. While watching, edits to the keyword rules file are picked up
live.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorWatch, "watch", false, "Keep watching with a terminal UI")
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 3*time.Minute, "Sweep cadence in watch mode")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	f, cleanup, err := buildFleet()
	if err != nil {
		return err
	}
	defer cleanup()

	if !monitorWatch {
		report, err := f.orch.ActivitySweep(cmd.Context())
		if err != nil {
			return err
		}
		for _, role := range report.Roles {
			if role.Stale {
				fmt.Printf("%s %-12s stale, pinged\n", color.YellowString("⚠"), role.Role)
				continue
			}
			fmt.Printf("%s %-12s active\n", color.GreenString("✓"), role.Role)
		}
		fmt.Printf("%d/%d roles stale\n", len(report.StaleRoles()), len(report.Roles))
		return nil
	}

	monitor := tui.NewMonitor(f.orch, monitorInterval)
	program := tea.NewProgram(monitor, tea.WithAltScreen())

	if f.cfg.Keywords.RulesPath != "" {
		stop, err := watchRules(f, program)
		if err != nil {
			return err
		}
		defer stop()
	}

	_, err = program.Run()
	return err
}

// watchRules reloads the keyword rules file whenever it changes on disk and
// tells the running TUI about it.
func watchRules(f *fleet, program *tea.Program) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch keyword rules: %w", err)
	}
	if err := watcher.Add(f.cfg.Keywords.RulesPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch keyword rules: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				router, err := loadRouter(f.cfg)
				if err == nil {
					f.orch.SetRouter(router)
				}
				program.Send(tui.RulesReloadedMsg{Err: err})
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { watcher.Close() }, nil
}

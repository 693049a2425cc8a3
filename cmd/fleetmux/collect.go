package main

import (
	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect-reports",
	Short: "Ask every worker for a progress report",
	Long: `Broadcast a progress report request to all workers, then notify the
coordinator that collection was requested. The command returns once the
requests are delivered; replies flow to the coordinator's pane, not back
to fleetmux.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, cleanup, err := buildFleet()
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := f.orch.CollectReports(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

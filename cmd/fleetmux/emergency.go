package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var emergencyCmd = &cobra.Command{
	Use:   "emergency <text>",
	Short: "Broadcast an emergency message to every pane",
	Long: `Send an emergency message to the lead, the coordinator, and every
worker in instant mode with a uniform emergency template. Per-role
framing and normal pacing are bypassed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, cleanup, err := buildFleet()
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := f.orch.EmergencyBroadcast(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

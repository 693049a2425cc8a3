package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var directiveCmd = &cobra.Command{
	Use:   "directive <text>",
	Short: "Relay a lead directive to the coordinator and all workers",
	Long: `Send a strategic directive from the lead to the whole team.

The coordinator and every worker receive the directive with lead framing;
the lead pane gets a relay confirmation. Text flagged urgent by the
classifier escalates to an instant-mode emergency broadcast instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, cleanup, err := buildFleet()
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := f.orch.Directive(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

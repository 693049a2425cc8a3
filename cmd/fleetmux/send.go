package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <role> <text>",
	Short: "Send raw text to a single role",
	Long: `Deliver text to one role without any framing. Accepted roles:
lead, coordinator, worker-N, all-workers, or a specialist category.
Urgent text is delivered in instant mode.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, cleanup, err := buildFleet()
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := f.orch.Send(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var specializedCmd = &cobra.Command{
	Use:   "specialized <category> <text>",
	Short: "Send a task to the workers tagged with a specialist category",
	Long: `Send a task only to the workers carrying the given specialty tag,
e.g. backend, frontend, or infra. Categories come from the topology
configuration; an unknown category aborts without dispatching.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, cleanup, err := buildFleet()
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := f.orch.Specialized(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

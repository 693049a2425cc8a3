package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task <text>",
	Short: "Send a coordinator task to every worker",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, cleanup, err := buildFleet()
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := f.orch.Task(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

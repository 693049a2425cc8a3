package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var autoCmd = &cobra.Command{
	Use:   "auto <text>",
	Short: "Distribute a task by keyword routing, or round-robin",
	Long: `Classify the task text against the keyword rules. If exactly one
specialist category matches, the task goes to that category's workers.
Otherwise the next worker in the round-robin rotation gets it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, cleanup, err := buildFleet()
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := f.orch.AutoDistribute(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		switch {
		case result.AllocatedTo != "":
			fmt.Printf("%s round-robin -> %s\n", color.CyanString("routing:"), result.AllocatedTo)
		case len(result.Categories) > 0:
			fmt.Printf("%s keyword match -> %s\n", color.CyanString("routing:"), strings.Join(result.Categories, ", "))
		}
		return printResult(result)
	},
}

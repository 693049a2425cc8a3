package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kensan196948G/fleetmux/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fleetmux version %s\n", version.Get())
	},
}

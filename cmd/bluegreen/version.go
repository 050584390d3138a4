// Version command for the bluegreen CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bluegreen/pkg/bluegreen"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bluegreen version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bluegreen v%s\nmodule: %s\n", bluegreen.Version, bluegreen.ModulePath)
	},
}

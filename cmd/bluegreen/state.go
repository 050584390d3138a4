package main

import (
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the shared state document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		st, err := svc.State()
		if err != nil {
			return classify(err)
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"version": svc.Variant().ID,
			"state":   st,
		})
	},
}

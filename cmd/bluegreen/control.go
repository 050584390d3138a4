// Control commands: the offline form of /control/bad and /control/migrate.
package main

import (
	"github.com/spf13/cobra"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Toggle forced failure or migrate the shared schema",
}

var (
	flagEnabled bool
	flagSchema  int
)

var controlBadCmd = &cobra.Command{
	Use:   "bad",
	Short: "Turn the forced-failure sentinel on or off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		on, err := svc.SetForcedFailure(flagEnabled)
		if err != nil {
			return classify(err)
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"version":    svc.Variant().ID,
			"forced_bad": on,
		})
	},
}

var controlMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Write a schema version within this variant's ceiling",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		st, err := svc.MigrateSchema(flagSchema)
		if err != nil {
			return classify(err)
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"version":        svc.Variant().ID,
			"schema_version": st.SchemaVersion,
		})
	},
}

func init() {
	controlBadCmd.Flags().BoolVar(&flagEnabled, "enabled", true, "create (true) or remove (false) the sentinel")
	controlMigrateCmd.Flags().IntVar(&flagSchema, "schema", 1, "target schema version")

	controlCmd.AddCommand(controlBadCmd)
	controlCmd.AddCommand(controlMigrateCmd)
}

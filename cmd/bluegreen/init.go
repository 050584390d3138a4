// Init command for the bluegreen CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml and initialize the shared state document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return withCode(exitSysError, err)
		}
		storeCfg, err := storeConfigFrom(cfg)
		if err != nil {
			return withCode(exitUserError, err)
		}

		wrote, err := writeConfigIfMissing(configDir, storeCfg.DataDir)
		if err != nil {
			return withCode(exitSysError, err)
		}

		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		if err := svc.Init(); err != nil {
			return classify(err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "bluegreen initialized")
		if wrote {
			fmt.Fprintln(out, "  config:", configDir, "(written)")
		} else {
			fmt.Fprintln(out, "  config:", configDir)
		}
		fmt.Fprintln(out, "  data:  ", storeCfg.DataDir)
		return nil
	},
}

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Evaluate this variant's health against the shared state",
	Long: `Evaluate health the same way GET /health does, without a running server.
Exits 0 when healthy and 2 otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		id := svc.Variant().ID
		st, checkErr := svc.Check()
		if checkErr == nil {
			return printJSON(cmd.OutOrStdout(), map[string]any{"status": "ok", "version": id})
		}

		body := map[string]any{"status": "bad", "version": id}
		var ie *types.SchemaIncompatibleError
		switch {
		case errors.Is(checkErr, types.ErrForcedFailure):
			body["reason"] = types.ErrForcedFailure.Error()
		case errors.As(checkErr, &ie):
			body["reason"] = types.ErrSchemaIncompatible.Error()
			body["schema_version"] = st.SchemaVersion
		default:
			body["reason"] = types.ErrStorage.Error()
		}
		if err := printJSON(cmd.OutOrStdout(), body); err != nil {
			return err
		}
		return withCode(exitSysError, checkErr)
	},
}

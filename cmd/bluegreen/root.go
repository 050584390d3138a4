// Root command for the bluegreen CLI.
// Implements: docs/ARCHITECTURE § CLI, § Configuration.
package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/bluegreen/internal/paths"
	"github.com/mesh-intelligence/bluegreen/pkg/bluegreen"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values that are not merged through viper.
var flagConfigDir string

// cfg holds the merged configuration (flag > env > config.yaml > default).
// Set by PersistentPreRunE so all subcommands can use it.
var cfg *viper.Viper

// logger is configured from log_level and log_format in PersistentPreRunE.
var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:           "bluegreen",
	Short:         "Shared-state service for blue/green deployment drills",
	Long:          "bluegreen runs one variant of a blue/green pair. Both variants share a\nversioned state document and each refuses schemas above its own ceiling.",
	Version:       bluegreen.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return withCode(exitSysError, err)
		}

		v, err := loadConfig(configDir, cmd.Flags())
		if err != nil {
			return withCode(exitUserError, err)
		}
		cfg = v

		l, err := newLogger(cfg.GetString(cfgKeyLogLevel), cfg.GetString(cfgKeyLogFormat), logWriter(cmd))
		if err != nil {
			return withCode(exitUserError, err)
		}
		logger = l
		slog.SetDefault(l)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/bluegreen)")
	pf.String(flagVariant, "", "variant preset: blue or green (default: blue)")
	pf.String(flagBackend, "", "state backend: file or sqlite (default: file)")
	pf.String(flagDataDir, "", "shared state directory (default: $DATA_DIR or $XDG_DATA_HOME/bluegreen)")
	pf.String(flagSentinel, "", "forced-failure sentinel path (default: /tmp/force_bad)")
	pf.String(flagLogLevel, "", "log level: debug, info, warn, error (default: info)")
	pf.String(flagLogFormat, "", "log format: json or text (default: json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(controlCmd)
}

// resolveConfigDir returns the configuration directory following the precedence:
// --config-dir flag > BLUEGREEN_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

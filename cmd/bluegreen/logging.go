package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

// annotationLogStdout marks commands whose logs go to stdout. Offline
// commands print JSON on stdout, so they log to stderr.
const annotationLogStdout = "bluegreen.log-stdout"

// logWriter returns where cmd's structured logs are written.
func logWriter(cmd *cobra.Command) io.Writer {
	if cmd.Annotations[annotationLogStdout] == "true" {
		return cmd.OutOrStdout()
	}
	return cmd.ErrOrStderr()
}

// newLogger builds the process logger. format is json or text.
func newLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json", "":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// Serve command: runs one variant over HTTP until interrupted.
// Implements: docs/ARCHITECTURE § External Interfaces, § Serving Lifecycle.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bluegreen/internal/metrics"
	"github.com/mesh-intelligence/bluegreen/internal/server"
	"github.com/mesh-intelligence/bluegreen/internal/variant"
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Serve this variant over HTTP",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationLogStdout: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := variantFrom(cfg)
		if err != nil {
			return withCode(exitUserError, err)
		}
		m := metrics.New(v)

		svc, closeFn, err := openService(variant.WithObserver(m))
		if err != nil {
			return err
		}
		defer closeFn()

		// The first variant to start initializes the shared document.
		if err := svc.Init(); err != nil {
			return withCode(exitSysError, err)
		}

		gin.SetMode(gin.ReleaseMode)
		srv := server.New(svc, m, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withCode(exitSysError, srv.Run(ctx, listenAddr(cfg)))
	},
}

func init() {
	serveCmd.Flags().String(flagListen, "", "listen address (default: :$PORT or :8080)")
}

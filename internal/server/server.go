// Package server exposes a variant.Service over HTTP with JSON bodies.
// Implements: docs/ARCHITECTURE § External Interfaces.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/bluegreen/internal/metrics"
	"github.com/mesh-intelligence/bluegreen/internal/variant"
)

// Route paths.
const (
	RouteRoot    = "/"
	RouteHealth  = "/health"
	RouteState   = "/state"
	RouteBad     = "/control/bad"
	RouteMigrate = "/control/migrate"
	RouteMetrics = "/metrics"
)

// DefaultShutdownTimeout bounds graceful shutdown in Run.
const DefaultShutdownTimeout = 10 * time.Second

// Server routes HTTP requests to one variant.
type Server struct {
	svc     *variant.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
	engine  *gin.Engine

	shutdownTimeout time.Duration
}

// New builds the router for svc. m and logger may be nil.
func New(svc *variant.Service, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if m == nil {
		m = metrics.New(svc.Variant())
	}
	s := &Server{
		svc:             svc,
		metrics:         m,
		logger:          logger.With("variant", svc.Variant().ID),
		shutdownTimeout: DefaultShutdownTimeout,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	// Only the exact route paths exist; /health/ and friends are not found.
	r.RedirectTrailingSlash = false
	r.Use(
		s.requestID(),
		s.observe(),
		gin.CustomRecoveryWithWriter(nil, s.recoverPanic),
	)

	r.GET(RouteHealth, s.handleHealth)
	r.GET(RouteRoot, s.handleRoot)
	r.GET(RouteState, s.handleState)
	r.GET(RouteBad, s.handleBad)
	r.POST(RouteBad, s.handleBad)
	r.GET(RouteMigrate, s.handleMigrate)
	r.POST(RouteMigrate, s.handleMigrate)
	r.GET(RouteMetrics, gin.WrapH(s.metrics.Handler()))

	r.NoRoute(s.handleNotFound)
	return r
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. Each connection is served on its own goroutine.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String(), "schema_ceiling", s.svc.Variant().SchemaCeiling)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

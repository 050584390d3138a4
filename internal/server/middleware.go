package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/bluegreen/internal/metrics"
)

// HeaderRequestID carries the request id on requests and responses.
const HeaderRequestID = "X-Request-ID"

const ctxKeyRequestID = "request_id"

// newRequestID returns a UUID v7, falling back to v4 if v7 generation fails.
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// requestID propagates an inbound X-Request-ID or assigns a new one.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = newRequestID()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// observe records request metrics and writes one log line per request.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		s.metrics.InflightRequests.Inc()
		defer s.metrics.InflightRequests.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		statusLabel := strconv.Itoa(status)
		elapsed := time.Since(start)

		s.metrics.RequestsTotal.WithLabelValues(c.Request.Method, route, statusLabel).Inc()
		s.metrics.RequestDuration.WithLabelValues(c.Request.Method, route, statusLabel).Observe(elapsed.Seconds())

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", elapsed,
			"request_id", c.GetString(ctxKeyRequestID),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("request", attrs...)
			return
		}
		s.logger.Info("request", attrs...)
	}
}

// recoverPanic turns a panic into a 500 that still names the variant.
func (s *Server) recoverPanic(c *gin.Context, recovered any) {
	s.metrics.ErrorsTotal.WithLabelValues(metrics.ErrorPanic).Inc()
	s.logger.Error("unhandled panic",
		"panic", fmt.Sprint(recovered),
		"path", c.Request.URL.Path,
		"request_id", c.GetString(ctxKeyRequestID))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_server_error",
		"version": s.svc.Variant().ID,
	})
}

package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/bluegreen/internal/metrics"
	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

// Failure reasons that are not carried by a types sentinel.
const (
	reasonInternal = "internal_server_error"
	reasonNotFound = "not_found"
)

// failure classifies err into a metrics label, a machine-readable reason,
// and an HTTP status.
func failure(err error) (label, reason string, status int) {
	switch {
	case errors.Is(err, types.ErrForcedFailure):
		return metrics.ErrorForcedFailure, types.ErrForcedFailure.Error(), http.StatusInternalServerError
	case errors.Is(err, types.ErrSchemaIncompatible):
		return metrics.ErrorSchemaIncompat, types.ErrSchemaIncompatible.Error(), http.StatusInternalServerError
	case errors.Is(err, types.ErrUnsupportedSchema):
		return metrics.ErrorUnsupportedSchema, types.ErrUnsupportedSchema.Error(), http.StatusBadRequest
	case errors.Is(err, types.ErrInvalidSchema):
		return metrics.ErrorInvalidRequest, types.ErrInvalidSchema.Error(), http.StatusBadRequest
	case errors.Is(err, types.ErrStorage):
		return metrics.ErrorStorage, types.ErrStorage.Error(), http.StatusInternalServerError
	default:
		return metrics.ErrorInternal, reasonInternal, http.StatusInternalServerError
	}
}

// fail writes an error body {error, version, ...extra} for err.
func (s *Server) fail(c *gin.Context, err error, extra gin.H) {
	label, reason, status := failure(err)
	s.metrics.ErrorsTotal.WithLabelValues(label).Inc()
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", "path", c.Request.URL.Path, "reason", reason, "error", err)
	}

	body := gin.H{"error": reason, "version": s.svc.Variant().ID}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func (s *Server) handleHealth(c *gin.Context) {
	v := s.svc.Variant()
	st, err := s.svc.Check()
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": v.ID})
		return
	}

	label, reason, status := failure(err)
	s.metrics.ErrorsTotal.WithLabelValues(label).Inc()
	body := gin.H{"status": "bad", "reason": reason, "version": v.ID}
	var ie *types.SchemaIncompatibleError
	if errors.As(err, &ie) {
		body["schema_version"] = st.SchemaVersion
	}
	c.JSON(status, body)
}

func (s *Server) handleRoot(c *gin.Context) {
	st, err := s.svc.Serve()
	if err != nil {
		var ie *types.SchemaIncompatibleError
		if errors.As(err, &ie) {
			s.fail(c, err, gin.H{"supported_max_schema": ie.Supported, "found_schema": ie.Found})
			return
		}
		s.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"version":        s.svc.Variant().ID,
		"schema_version": st.SchemaVersion,
		"request_count":  st.RequestCount,
		"last_writer":    st.LastWriter,
	})
}

func (s *Server) handleState(c *gin.Context) {
	st, err := s.svc.State()
	if err != nil {
		s.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": s.svc.Variant().ID, "state": st})
}

// parseEnabled interprets the enabled query value; only 1, true and yes
// enable.
func parseEnabled(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func (s *Server) handleBad(c *gin.Context) {
	on, err := s.svc.SetForcedFailure(parseEnabled(c.DefaultQuery("enabled", "1")))
	if err != nil {
		s.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": s.svc.Variant().ID, "forced_bad": on})
}

func (s *Server) handleMigrate(c *gin.Context) {
	raw := c.DefaultQuery("schema", "1")
	target, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		s.fail(c, types.ErrInvalidSchema, nil)
		return
	}

	st, err := s.svc.MigrateSchema(target)
	if err != nil {
		var ue *types.UnsupportedSchemaError
		if errors.As(err, &ue) {
			s.fail(c, err, gin.H{"max": ue.Max})
			return
		}
		s.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": s.svc.Variant().ID, "schema_version": st.SchemaVersion})
}

func (s *Server) handleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   reasonNotFound,
		"path":    c.Request.URL.Path,
		"version": s.svc.Variant().ID,
	})
}

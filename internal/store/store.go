// Package store selects and attaches the StateStore backend named by a Config.
package store

import (
	"log/slog"

	"github.com/mesh-intelligence/bluegreen/internal/jsonfile"
	"github.com/mesh-intelligence/bluegreen/internal/sqlite"
	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

// New returns a detached store for config.Backend.
// Returns ErrBackendEmpty or ErrBackendUnknown for a bad backend name.
func New(config types.Config, logger *slog.Logger) (types.StateStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(logger), nil
	default:
		return jsonfile.NewStore(logger), nil
	}
}

// Open creates the store for config and attaches it. The caller must
// Detach the returned store.
func Open(config types.Config, logger *slog.Logger) (types.StateStore, error) {
	s, err := New(config, logger)
	if err != nil {
		return nil, err
	}
	if err := s.Attach(config); err != nil {
		return nil, err
	}
	return s, nil
}

// Package sqlite provides the public API for the SQLite state backend.
// This package exposes the factory function for creating SQLite stores
// while keeping implementation details internal.
//
// Implements: docs/ARCHITECTURE § SQLite Backend.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/bluegreen/internal/sqlite"
	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

// NewBackend creates a new SQLite state store.
// The store is not attached; call Attach with a Config to initialize.
// A nil logger discards output.
//
// Example:
//
//	st := sqlite.NewBackend(nil)
//	err := st.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/data",
//	})
//	defer st.Detach()
func NewBackend(logger *slog.Logger) types.StateStore {
	return sqlite.NewBackend(logger)
}

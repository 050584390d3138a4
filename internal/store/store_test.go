package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/bluegreen/internal/jsonfile"
	"github.com/mesh-intelligence/bluegreen/internal/sqlite"
	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(types.Config{Backend: types.BackendFile}, nil)
	require.NoError(t, err)
	assert.IsType(t, &jsonfile.Store{}, s)

	s, err = New(types.Config{Backend: types.BackendSQLite}, nil)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Backend{}, s)

	_, err = New(types.Config{Backend: "etcd"}, nil)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestOpenAttaches(t *testing.T) {
	for _, backend := range []string{types.BackendFile, types.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			s, err := Open(types.Config{Backend: backend, DataDir: t.TempDir()}, nil)
			require.NoError(t, err)
			defer s.Detach()

			require.NoError(t, s.Ensure("blue-v1"))
			st, err := s.Read()
			require.NoError(t, err)
			assert.Equal(t, types.NewState("blue-v1"), st)
		})
	}
}

package failflag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag_DefaultSentinel(t *testing.T) {
	f := New(false, "")
	assert.Equal(t, DefaultSentinelPath, f.SentinelPath())
}

func TestFlag_ToggleSentinel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "force_bad")
	f := New(false, path)

	on, err := f.Enabled()
	require.NoError(t, err)
	assert.False(t, on)

	on, err = f.Set(true)
	require.NoError(t, err)
	assert.True(t, on)
	_, err = os.Stat(path)
	assert.NoError(t, err)

	on, err = f.Set(false)
	require.NoError(t, err)
	assert.False(t, on)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFlag_DisableAbsentIsNoop(t *testing.T) {
	f := New(false, filepath.Join(t.TempDir(), "force_bad"))

	on, err := f.Set(false)
	require.NoError(t, err)
	assert.False(t, on)

	on, err = f.Set(false)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestFlag_StaticSourceWins(t *testing.T) {
	f := New(true, filepath.Join(t.TempDir(), "force_bad"))

	on, err := f.Enabled()
	require.NoError(t, err)
	assert.True(t, on)

	on, err = f.Set(false)
	require.NoError(t, err)
	assert.True(t, on, "static switch keeps the flag on")
	assert.True(t, f.Static())
}

func TestFlag_SharedSentinel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared", "force_bad")
	blue := New(false, path)
	green := New(false, path)

	_, err := blue.Set(true)
	require.NoError(t, err)

	on, err := green.Enabled()
	require.NoError(t, err)
	assert.True(t, on)
}

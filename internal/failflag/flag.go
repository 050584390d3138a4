// Package failflag holds the Forced-Failure Flag: an operator switch that
// makes a variant report itself unhealthy regardless of its real state.
//
// The flag has two sources. The static source is fixed at process start from
// configuration. The dynamic source is a sentinel file whose presence means
// "on"; it is shared by every process that points at the same path and has
// no persistence contract across restarts.
// Implements: docs/ARCHITECTURE § Forced-Failure Flag, § Control Surface.
package failflag

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultSentinelPath is the marker used when none is configured.
const DefaultSentinelPath = "/tmp/force_bad"

// Flag reports and toggles the effective forced-failure state.
type Flag struct {
	mu       sync.Mutex
	static   bool
	sentinel string
}

// New returns a Flag with the given static setting and sentinel path.
// An empty sentinel uses DefaultSentinelPath.
func New(static bool, sentinel string) *Flag {
	if sentinel == "" {
		sentinel = DefaultSentinelPath
	}
	return &Flag{static: static, sentinel: sentinel}
}

// SentinelPath returns the marker file location.
func (f *Flag) SentinelPath() string {
	return f.sentinel
}

// Static reports the process-start setting.
func (f *Flag) Static() bool {
	return f.static
}

// Enabled reports whether either source is on.
func (f *Flag) Enabled() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.static {
		return true, nil
	}
	return f.sentinelPresent()
}

func (f *Flag) sentinelPresent() (bool, error) {
	_, err := os.Stat(f.sentinel)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat sentinel %s: %w", f.sentinel, err)
}

// Set creates the sentinel when enabled is true and removes it otherwise.
// Removing an absent sentinel is a no-op. Returns the resulting effective
// flag, which stays true while the static source is on.
func (f *Flag) Set(enabled bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if enabled {
		if err := os.MkdirAll(filepath.Dir(f.sentinel), 0o755); err != nil {
			return false, fmt.Errorf("create sentinel dir: %w", err)
		}
		if err := os.WriteFile(f.sentinel, []byte("1"), 0o644); err != nil {
			return false, fmt.Errorf("write sentinel: %w", err)
		}
	} else {
		if err := os.Remove(f.sentinel); err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("remove sentinel: %w", err)
		}
	}

	if f.static {
		return true, nil
	}
	return f.sentinelPresent()
}

// Implements: docs/ARCHITECTURE § State Store, § Concurrency.
package jsonfile

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

// FileName is the name of the document inside DataDir.
const FileName = "state.json"

// Store implements types.StateStore over DataDir/state.json.
//
// All operations hold mu, so within one process a read never observes a
// document mid-write and read-modify-write sequences never interleave.
// Across processes writes are atomic renames but Update is not serialized.
type Store struct {
	mu       sync.Mutex
	attached bool
	path     string
	logger   *slog.Logger
}

// NewStore creates a detached file store. A nil logger discards output.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// Path returns the document path, or "" while detached.
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Attach creates DataDir if needed and binds the store to it.
// Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return &types.StorageError{Op: "mkdir", Path: dataDir, Err: err}
	}

	s.path = filepath.Join(dataDir, FileName)
	s.attached = true
	return nil
}

// Detach unbinds the store. Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attached = false
	s.path = ""
	return nil
}

// Ensure creates the document if it does not exist.
func (s *Store) Ensure(writer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	return s.ensureLocked(writer)
}

func (s *Store) ensureLocked(writer string) error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return &types.StorageError{Op: "stat", Path: s.path, Err: err}
	}

	data, err := types.EncodeState(types.NewState(writer))
	if err != nil {
		return err
	}
	created, err := createExclusive(s.path, data)
	if err != nil {
		return &types.StorageError{Op: "create", Path: s.path, Err: err}
	}
	if created {
		s.logger.Info("state document initialized", "path", s.path, "writer", writer)
	}
	return nil
}

// Read returns the current document.
func (s *Store) Read() (types.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.State{}, types.ErrStoreDetached
	}
	return s.readLocked()
}

func (s *Store) readLocked() (types.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return types.State{}, &types.StorageError{Op: "read", Path: s.path, Err: err}
	}
	st, err := types.DecodeState(data)
	if err != nil {
		return types.State{}, &types.StorageError{Op: "decode", Path: s.path, Err: err}
	}
	return st, nil
}

// Write replaces the document.
func (s *Store) Write(state types.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	return s.writeLocked(state)
}

func (s *Store) writeLocked(state types.State) error {
	data, err := types.EncodeState(state)
	if err != nil {
		return err
	}
	if err := writeAtomic(s.path, data); err != nil {
		return &types.StorageError{Op: "write", Path: s.path, Err: err}
	}
	s.logger.Debug("state document written",
		"schema_version", state.SchemaVersion,
		"request_count", state.RequestCount,
		"last_writer", state.LastWriter)
	return nil
}

// Update performs read, fn, write as one step under the store mutex.
func (s *Store) Update(fn func(*types.State) error) (types.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.State{}, types.ErrStoreDetached
	}

	st, err := s.readLocked()
	if err != nil {
		return types.State{}, err
	}
	if err := fn(&st); err != nil {
		return types.State{}, err
	}
	if err := s.writeLocked(st); err != nil {
		return types.State{}, err
	}
	return st, nil
}

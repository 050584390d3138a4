package types

import "errors"

// StateStore holds the shared State Document. Implementations serialize all
// operations within one process; cross-process guarantees are backend
// specific.
// Implements: docs/ARCHITECTURE § State Store.
type StateStore interface {
	// Attach opens the backend described by config. Creates DataDir if it
	// does not exist. Returns ErrAlreadyAttached if already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error

	// Ensure creates the document with NewState(writer) if it is absent.
	// An existing document is never altered.
	Ensure(writer string) error

	// Read returns the current document. Returns a *StorageError if the
	// medium is unreadable or the document is corrupt.
	Read() (State, error)

	// Write atomically replaces the whole document.
	Write(state State) error

	// Update runs read, fn, write under the store's exclusion region and
	// returns the written document. If fn returns an error nothing is
	// written and that error is returned unchanged.
	Update(fn func(*State) error) (State, error)
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("state store is detached")
	ErrAlreadyAttached = errors.New("state store is already attached")
)

// Implements: docs/ARCHITECTURE § State Store, § Concurrency.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

// FileName is the name of the database inside DataDir.
const FileName = "state.db"

// busyTimeoutMS bounds how long a writer waits for another process's
// transaction before failing with SQLITE_BUSY.
const busyTimeoutMS = 5000

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Backend implements types.StateStore using a single-row SQLite table.
//
// mu serializes operations within the process. Update additionally runs in an
// IMMEDIATE transaction, so read-modify-write sequences from different
// processes sharing the database file are serialized by SQLite's write lock.
type Backend struct {
	mu       sync.Mutex
	attached bool
	path     string
	db       *sql.DB
	logger   *slog.Logger
}

// NewBackend creates a detached SQLite backend. A nil logger discards output.
func NewBackend(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{logger: logger}
}

// dsn builds the connection string for path. Transactions take the write
// lock on BEGIN so concurrent writers queue instead of failing on upgrade.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// Attach creates DataDir if needed, opens the database and creates the state
// table if it does not exist. Existing data is preserved.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
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

	path := filepath.Join(dataDir, FileName)
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return &types.StorageError{Op: "open", Path: path, Err: err}
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createState); err != nil {
		db.Close()
		return &types.StorageError{Op: "schema", Path: path, Err: err}
	}

	b.db = db
	b.path = path
	b.attached = true
	return nil
}

// Detach closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	return nil
}

// Ensure inserts the initial row unless one already exists.
func (b *Backend) Ensure(writer string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	st := types.NewState(writer)
	if err := st.Validate(); err != nil {
		return err
	}
	res, err := b.db.Exec(insertStateIfAbsent, stateID, st.SchemaVersion, st.RequestCount, st.LastWriter)
	if err != nil {
		return &types.StorageError{Op: "create", Path: b.path, Err: err}
	}
	if n, _ := res.RowsAffected(); n > 0 {
		b.logger.Info("state document initialized", "path", b.path, "writer", writer)
	}
	return nil
}

// Read returns the current document.
func (b *Backend) Read() (types.State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.State{}, types.ErrStoreDetached
	}
	return b.readFrom(b.db)
}

func (b *Backend) readFrom(q queryer) (types.State, error) {
	var st types.State
	err := q.QueryRow(selectState, stateID).Scan(&st.SchemaVersion, &st.RequestCount, &st.LastWriter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("%w: no document", types.ErrInvalidState)
		}
		return types.State{}, &types.StorageError{Op: "read", Path: b.path, Err: err}
	}
	if err := st.Validate(); err != nil {
		return types.State{}, &types.StorageError{Op: "decode", Path: b.path, Err: err}
	}
	return st, nil
}

// Write replaces the document.
func (b *Backend) Write(state types.State) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	return b.writeTo(b.db, state)
}

func (b *Backend) writeTo(q queryer, state types.State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	if _, err := q.Exec(upsertState, stateID, state.SchemaVersion, state.RequestCount, state.LastWriter); err != nil {
		return &types.StorageError{Op: "write", Path: b.path, Err: err}
	}
	b.logger.Debug("state document written",
		"schema_version", state.SchemaVersion,
		"request_count", state.RequestCount,
		"last_writer", state.LastWriter)
	return nil
}

// Update performs read, fn, write inside one transaction.
func (b *Backend) Update(fn func(*types.State) error) (types.State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.State{}, types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return types.State{}, &types.StorageError{Op: "begin", Path: b.path, Err: err}
	}
	defer tx.Rollback()

	st, err := b.readFrom(tx)
	if err != nil {
		return types.State{}, err
	}
	if err := fn(&st); err != nil {
		return types.State{}, err
	}
	if err := b.writeTo(tx, st); err != nil {
		return types.State{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.State{}, &types.StorageError{Op: "commit", Path: b.path, Err: err}
	}
	return st, nil
}

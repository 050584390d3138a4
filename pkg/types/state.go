package types

import "fmt"

// InitialSchemaVersion is the schema a freshly initialized document carries.
const InitialSchemaVersion = 1

// State is the single shared document read and written by every variant.
// Implements: docs/ARCHITECTURE § Data Model.
type State struct {
	SchemaVersion int    `json:"schema_version"`
	RequestCount  int64  `json:"request_count"`
	LastWriter    string `json:"last_writer"`
}

// NewState returns the document written on first access by the variant
// identified by writer.
func NewState(writer string) State {
	return State{
		SchemaVersion: InitialSchemaVersion,
		RequestCount:  0,
		LastWriter:    writer,
	}
}

// Validate checks the field invariants of a document. It returns an error
// wrapping ErrInvalidState when a field is out of range.
func (s State) Validate() error {
	if s.SchemaVersion < InitialSchemaVersion {
		return fmt.Errorf("%w: schema_version %d < %d", ErrInvalidState, s.SchemaVersion, InitialSchemaVersion)
	}
	if s.RequestCount < 0 {
		return fmt.Errorf("%w: request_count %d is negative", ErrInvalidState, s.RequestCount)
	}
	if s.LastWriter == "" {
		return fmt.Errorf("%w: last_writer is empty", ErrInvalidState)
	}
	return nil
}

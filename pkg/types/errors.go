package types

import (
	"errors"
	"fmt"
)

// Failure outcomes surfaced by the health and control operations.
// Implements: docs/ARCHITECTURE § Errors.
var (
	ErrForcedFailure      = errors.New("forced_bad_mode")
	ErrSchemaIncompatible = errors.New("schema_incompatible")
	ErrUnsupportedSchema  = errors.New("unsupported_schema_for_version")
	ErrInvalidSchema      = errors.New("invalid_schema")
	ErrStorage            = errors.New("storage_error")
)

// Document errors.
var (
	ErrInvalidState = errors.New("invalid state document")
)

// SchemaIncompatibleError reports a live document whose schema has moved past
// what the serving variant understands.
type SchemaIncompatibleError struct {
	Found     int
	Supported int
}

func (e *SchemaIncompatibleError) Error() string {
	return fmt.Sprintf("schema_incompatible: found schema %d, supported max %d", e.Found, e.Supported)
}

func (e *SchemaIncompatibleError) Is(target error) bool {
	return target == ErrSchemaIncompatible
}

// UnsupportedSchemaError reports a migration that would write a schema
// version above the variant's ceiling.
type UnsupportedSchemaError struct {
	Target int
	Max    int
}

func (e *UnsupportedSchemaError) Error() string {
	return fmt.Sprintf("unsupported_schema_for_version: target %d exceeds max %d", e.Target, e.Max)
}

func (e *UnsupportedSchemaError) Is(target error) bool {
	return target == ErrUnsupportedSchema
}

// StorageError wraps a failure of the underlying medium: unreadable,
// unwritable, or holding a corrupt document.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage_error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage_error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Package types defines the State Document, the Variant and its schema
// ceiling, the StateStore interface, configuration, and the standard errors
// shared by both deployment variants.
// Implements: docs/ARCHITECTURE § Data Model, § State Store, § Errors.
package types

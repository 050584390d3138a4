package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// stateFields mirrors State with pointer fields so a missing key can be told
// apart from a zero value.
type stateFields struct {
	SchemaVersion *int    `json:"schema_version"`
	RequestCount  *int64  `json:"request_count"`
	LastWriter    *string `json:"last_writer"`
}

// DecodeState parses a stored document. Every field must be present with the
// right type and unknown fields are rejected; the result is validated.
// Errors wrap ErrInvalidState.
func DecodeState(data []byte) (State, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw stateFields
	if err := dec.Decode(&raw); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if raw.SchemaVersion == nil || raw.RequestCount == nil || raw.LastWriter == nil {
		return State{}, fmt.Errorf("%w: missing field", ErrInvalidState)
	}

	st := State{
		SchemaVersion: *raw.SchemaVersion,
		RequestCount:  *raw.RequestCount,
		LastWriter:    *raw.LastWriter,
	}
	if err := st.Validate(); err != nil {
		return State{}, err
	}
	return st, nil
}

// EncodeState serializes a document after validating it.
func EncodeState(s State) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

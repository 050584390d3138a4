package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	st := NewState("blue-v1")
	assert.Equal(t, State{SchemaVersion: 1, RequestCount: 0, LastWriter: "blue-v1"}, st)
	assert.NoError(t, st.Validate())
}

func TestStateValidate(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		wantErr bool
	}{
		{"initial document", State{1, 0, "init"}, false},
		{"migrated document", State{3, 42, "green-v2"}, false},
		{"schema zero", State{0, 0, "init"}, true},
		{"negative count", State{1, -1, "init"}, true},
		{"empty writer", State{1, 0, ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}

func TestStateJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(State{SchemaVersion: 2, RequestCount: 7, LastWriter: "green-v2"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"schema_version":2,"request_count":7,"last_writer":"green-v2"}`, string(data))
}

func TestDecodeState(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    State
		wantErr bool
	}{
		{
			name:  "complete document",
			input: `{"schema_version":1,"request_count":3,"last_writer":"blue-v1"}`,
			want:  State{1, 3, "blue-v1"},
		},
		{name: "missing last_writer", input: `{"schema_version":1,"request_count":3}`, wantErr: true},
		{name: "missing request_count", input: `{"schema_version":1,"last_writer":"x"}`, wantErr: true},
		{name: "wrong type", input: `{"schema_version":"1","request_count":0,"last_writer":"x"}`, wantErr: true},
		{name: "extra field", input: `{"schema_version":1,"request_count":0,"last_writer":"x","other":1}`, wantErr: true},
		{name: "truncated", input: `{"schema_version":1,"req`, wantErr: true},
		{name: "empty", input: ``, wantErr: true},
		{name: "invalid values", input: `{"schema_version":0,"request_count":0,"last_writer":"x"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeState([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidState))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeStateRejectsInvalid(t *testing.T) {
	_, err := EncodeState(State{SchemaVersion: 1, RequestCount: 0})
	assert.ErrorIs(t, err, ErrInvalidState)

	data, err := EncodeState(NewState("init"))
	require.NoError(t, err)
	st, err := DecodeState(data)
	require.NoError(t, err)
	assert.Equal(t, NewState("init"), st)
}

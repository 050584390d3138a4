package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantCompatible(t *testing.T) {
	tests := []struct {
		variant Variant
		schema  int
		want    bool
	}{
		{Blue, 1, true},
		{Blue, 2, false},
		{Green, 1, true},
		{Green, 2, true},
		{Green, 3, false},
	}
	for _, tt := range tests {
		st := State{SchemaVersion: tt.schema, LastWriter: "init"}
		assert.Equal(t, tt.want, tt.variant.Compatible(st), "%s with schema %d", tt.variant.ID, tt.schema)
		assert.Equal(t, tt.want, tt.variant.CanWrite(tt.schema), "%s writing schema %d", tt.variant.ID, tt.schema)
	}
}

func TestLookupVariant(t *testing.T) {
	v, err := LookupVariant("blue")
	require.NoError(t, err)
	assert.Equal(t, Blue, v)

	v, err = LookupVariant("green")
	require.NoError(t, err)
	assert.Equal(t, Green, v)

	_, err = LookupVariant("purple")
	assert.ErrorIs(t, err, ErrVariantUnknown)

	assert.Equal(t, []string{"blue", "green"}, VariantNames())
}

func TestVariantValidate(t *testing.T) {
	assert.NoError(t, Blue.Validate())
	assert.ErrorIs(t, Variant{SchemaCeiling: 1}.Validate(), ErrVariantIDEmpty)
	assert.ErrorIs(t, Variant{ID: "x", SchemaCeiling: 0}.Validate(), ErrCeilingInvalid)
}

package types

import (
	"fmt"
	"sort"
)

// Variant identifies one deployable instance and the highest schema version
// it understands and is permitted to write.
// Implements: docs/ARCHITECTURE § Compatibility Policy.
type Variant struct {
	ID            string `json:"id" yaml:"id"`
	SchemaCeiling int    `json:"schema_ceiling" yaml:"schema_ceiling"`
}

// Built-in variants of the blue/green pair.
var (
	Blue  = Variant{ID: "blue-v1", SchemaCeiling: 1}
	Green = Variant{ID: "green-v2", SchemaCeiling: 2}
)

// presets maps the short names accepted by configuration to built-in variants.
var presets = map[string]Variant{
	"blue":  Blue,
	"green": Green,
}

// LookupVariant returns the built-in variant registered under name.
// Returns ErrVariantUnknown if no preset has that name.
func LookupVariant(name string) (Variant, error) {
	v, ok := presets[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrVariantUnknown, name)
	}
	return v, nil
}

// VariantNames lists the preset names in sorted order.
func VariantNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compatible reports whether this variant can interpret the document, that is
// whether the document's schema version does not exceed the ceiling.
func (v Variant) Compatible(s State) bool {
	return s.SchemaVersion <= v.SchemaCeiling
}

// CanWrite reports whether the variant is permitted to write target.
func (v Variant) CanWrite(target int) bool {
	return target <= v.SchemaCeiling
}

// Validate checks that the variant has an identity and a usable ceiling.
func (v Variant) Validate() error {
	if v.ID == "" {
		return ErrVariantIDEmpty
	}
	if v.SchemaCeiling < InitialSchemaVersion {
		return ErrCeilingInvalid
	}
	return nil
}

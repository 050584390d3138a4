// Package variant implements one deployable instance of the blue/green pair:
// the health evaluator, the primary request workflow and the control surface,
// all parameterized by a types.Variant.
// Implements: docs/ARCHITECTURE § Health Evaluator, § Request Workflow,
//
//	§ Control Surface.
package variant

import "github.com/mesh-intelligence/bluegreen/pkg/types"

// Evaluate derives health from the forced-failure flag and the document, in
// fixed priority: forced failure, then schema compatibility. It returns nil
// when healthy, types.ErrForcedFailure, or a *types.SchemaIncompatibleError.
func Evaluate(forced bool, st types.State, v types.Variant) error {
	if forced {
		return types.ErrForcedFailure
	}
	if !v.Compatible(st) {
		return &types.SchemaIncompatibleError{Found: st.SchemaVersion, Supported: v.SchemaCeiling}
	}
	return nil
}

// Package bluegreen holds build metadata for the bluegreen binary.
package bluegreen

// Version is the release version, overridable at build time with
// -ldflags "-X github.com/mesh-intelligence/bluegreen/pkg/bluegreen.Version=...".
var Version = "0.1.0"

// ModulePath is the Go module path of this repository.
const ModulePath = "github.com/mesh-intelligence/bluegreen"

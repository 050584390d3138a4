// Shared helpers for bluegreen CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mesh-intelligence/bluegreen/internal/failflag"
	"github.com/mesh-intelligence/bluegreen/internal/store"
	"github.com/mesh-intelligence/bluegreen/internal/variant"
	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

// openService resolves the variant and store from cfg, attaches the store
// and binds a Service to it. The caller must call the returned close func.
func openService(opts ...variant.Option) (*variant.Service, func(), error) {
	v, err := variantFrom(cfg)
	if err != nil {
		return nil, nil, withCode(exitUserError, err)
	}
	storeCfg, err := storeConfigFrom(cfg)
	if err != nil {
		return nil, nil, withCode(exitUserError, err)
	}

	st, err := store.Open(storeCfg, logger)
	if err != nil {
		return nil, nil, withCode(exitSysError, fmt.Errorf("attach store: %w", err))
	}
	closeFn := func() {
		if err := st.Detach(); err != nil {
			logger.Error("detach store", "error", err)
		}
	}

	flag := failflag.New(cfg.GetBool(cfgKeyForceBad), cfg.GetString(cfgKeySentinel))
	opts = append([]variant.Option{variant.WithLogger(logger)}, opts...)
	svc, err := variant.NewService(v, st, flag, opts...)
	if err != nil {
		closeFn()
		return nil, nil, withCode(exitUserError, err)
	}
	return svc, closeFn, nil
}

// classify maps a service error to an exit code: operator errors are user
// errors, everything else is a system error.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrUnsupportedSchema), errors.Is(err, types.ErrInvalidSchema):
		return withCode(exitUserError, err)
	default:
		return withCode(exitSysError, err)
	}
}

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package variant

import (
	"fmt"

	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

// forced reads the effective flag. A sentinel that cannot be inspected is a
// storage failure.
func (s *Service) forced() (bool, error) {
	on, err := s.flag.Enabled()
	if err != nil {
		return false, &types.StorageError{Op: "sentinel", Path: s.flag.SentinelPath(), Err: err}
	}
	s.observer.ObserveForced(on)
	return on, nil
}

// read ensures the document exists and returns it.
func (s *Service) read() (types.State, error) {
	if err := s.store.Ensure(s.variant.ID); err != nil {
		return types.State{}, err
	}
	st, err := s.store.Read()
	if err != nil {
		return types.State{}, err
	}
	s.observer.ObserveState(st)
	return st, nil
}

// State returns the raw document without any health gate.
func (s *Service) State() (types.State, error) {
	return s.read()
}

// Check runs the health evaluator. It never mutates the document. The
// returned state is the document that was evaluated; it is the zero value
// when the forced-failure flag short-circuits the check.
func (s *Service) Check() (types.State, error) {
	on, err := s.forced()
	if err != nil {
		return types.State{}, err
	}
	if on {
		return types.State{}, types.ErrForcedFailure
	}

	st, err := s.read()
	if err != nil {
		return types.State{}, err
	}
	return st, Evaluate(false, st, s.variant)
}

// Serve is the primary request workflow: when healthy it increments
// request_count by exactly one and records this variant as last_writer.
// When unhealthy it returns the evaluator's error without side effects.
func (s *Service) Serve() (types.State, error) {
	if _, err := s.Check(); err != nil {
		return types.State{}, err
	}

	st, err := s.store.Update(func(st *types.State) error {
		// The document may have been migrated since Check; re-evaluate
		// against the locked copy before writing.
		if err := Evaluate(false, *st, s.variant); err != nil {
			return err
		}
		st.RequestCount++
		st.LastWriter = s.variant.ID
		return nil
	})
	if err != nil {
		return types.State{}, err
	}
	s.observer.ObserveState(st)
	return st, nil
}

// ForcedFailure reports the effective forced-failure flag.
func (s *Service) ForcedFailure() (bool, error) {
	return s.forced()
}

// SetForcedFailure turns the dynamic sentinel on or off and returns the
// effective flag.
func (s *Service) SetForcedFailure(enabled bool) (bool, error) {
	on, err := s.flag.Set(enabled)
	if err != nil {
		return false, &types.StorageError{Op: "sentinel", Path: s.flag.SentinelPath(), Err: err}
	}
	s.observer.ObserveForced(on)
	s.logger.Warn("forced failure toggled", "requested", enabled, "forced_bad", on)
	return on, nil
}

// MigrateSchema writes target as the document's schema_version. A variant
// never writes a schema above its own ceiling: such a target fails with
// *types.UnsupportedSchemaError before storage is touched. request_count is
// left unchanged.
func (s *Service) MigrateSchema(target int) (types.State, error) {
	if target < types.InitialSchemaVersion {
		return types.State{}, fmt.Errorf("%w: %d", types.ErrInvalidSchema, target)
	}
	if !s.variant.CanWrite(target) {
		return types.State{}, &types.UnsupportedSchemaError{Target: target, Max: s.variant.SchemaCeiling}
	}

	if err := s.store.Ensure(s.variant.ID); err != nil {
		return types.State{}, err
	}
	st, err := s.store.Update(func(st *types.State) error {
		st.SchemaVersion = target
		st.LastWriter = s.variant.ID
		return nil
	})
	if err != nil {
		return types.State{}, err
	}
	s.observer.ObserveState(st)
	s.logger.Warn("schema migrated", "schema_version", target)
	return st, nil
}

package variant

import (
	"log/slog"

	"github.com/mesh-intelligence/bluegreen/internal/failflag"
	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

// Observer receives the values read or written by a Service. It is used to
// export gauges; implementations must be safe for concurrent use.
type Observer interface {
	ObserveState(st types.State)
	ObserveForced(on bool)
}

type nopObserver struct{}

func (nopObserver) ObserveState(types.State) {}
func (nopObserver) ObserveForced(bool)       {}

// Service is one variant bound to the shared store and failure flag.
// Every method is safe for concurrent use; document mutations are serialized
// by the store.
type Service struct {
	variant  types.Variant
	store    types.StateStore
	flag     *failflag.Flag
	logger   *slog.Logger
	observer Observer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers an observer for state and flag values.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewService binds v to an attached store and a flag.
func NewService(v types.Variant, store types.StateStore, flag *failflag.Flag, opts ...Option) (*Service, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		variant:  v,
		store:    store,
		flag:     flag,
		logger:   slog.New(slog.DiscardHandler),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("variant", v.ID)
	return s, nil
}

// Variant returns the identity and ceiling this service runs with.
func (s *Service) Variant() types.Variant {
	return s.variant
}

// Init creates the State Document if it does not exist yet, recording this
// variant as the initializer.
func (s *Service) Init() error {
	return s.store.Ensure(s.variant.ID)
}

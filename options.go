package routequery

// Option configures a synchronizer.
type Option func(*syncConfig)

type syncConfig struct {
	store     Store
	mode      Mode
	transform any
	queues    *Queues
	registrar Registrar
}

func applyOptions(opts []Option) syncConfig {
	cfg := syncConfig{
		mode:      ModeReplace,
		queues:    DefaultQueues(),
		registrar: ScopeRegistrar(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithStore sets the document the synchronizer mirrors. Required.
func WithStore(store Store) Option {
	return func(cfg *syncConfig) {
		cfg.store = store
	}
}

// WithMode selects push or replace commits (default ModeReplace).
func WithMode(mode Mode) Option {
	return func(cfg *syncConfig) {
		cfg.mode = mode.orDefault()
	}
}

// WithTransform sets the raw/typed conversion. The transform's type must match
// the synchronizer's type; Identity is used when T is RawValue.
func WithTransform[T any](transform Transform[T]) Option {
	return func(cfg *syncConfig) {
		cfg.transform = transform
	}
}

// WithQueues selects the write-coalescing registry (default DefaultQueues()).
func WithQueues(queues *Queues) Option {
	return func(cfg *syncConfig) {
		if queues != nil {
			cfg.queues = queues
		}
	}
}

// WithRegistrar selects where disposal is registered (default ScopeRegistrar()).
func WithRegistrar(registrar Registrar) Option {
	return func(cfg *syncConfig) {
		if registrar == nil {
			cfg.registrar = NoRegistrar()
			return
		}
		cfg.registrar = registrar
	}
}

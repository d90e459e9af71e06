package rule

import (
	"log/slog"
	"sync"
)

// Registry holds rule definitions in registration order.
//
// Design decision: The registry is an explicit value injected into the
// auditor rather than package-level state, so tests get isolated registries
// and concurrent use can be reasoned about in one place. The mutex guards the
// list of definitions only; fields of a Definition are not synchronized.
type Registry struct {
	mu    sync.RWMutex
	rules []*Definition

	// logger is used to warn about duplicate identifiers.
	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used by the registry.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		rules: make([]*Definition, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Add registers a definition.
//
// Registering an identifier twice is allowed; the earlier definition keeps
// winning lookups and a warning is logged.
func (r *Registry) Add(def *Definition) error {
	if err := def.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.rules {
		if existing.ID == def.ID {
			r.logger.Warn("duplicate rule id, earlier definition shadows this one",
				"rule", def.ID,
			)
			break
		}
	}

	r.rules = append(r.rules, def)
	return nil
}

// MustAdd registers definitions and panics on the first error.
// Intended for static rule sets.
func (r *Registry) MustAdd(defs ...*Definition) {
	for _, def := range defs {
		if err := r.Add(def); err != nil {
			panic(err)
		}
	}
}

// Find returns the first definition whose identifier equals id exactly.
// The boolean is false when the registry is empty or nothing matches; absence
// is a normal outcome, not an error.
func (r *Registry) Find(id string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, def := range r.rules {
		if def.ID == id {
			return def, true
		}
	}
	return nil, false
}

// List returns the registered definitions in registration order.
// The returned slice is a copy; the definitions are shared.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Definition, len(r.rules))
	copy(out, r.rules)
	return out
}

// WithTag returns the definitions carrying tag, in registration order.
func (r *Registry) WithTag(tag string) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Definition, 0)
	for _, def := range r.rules {
		if def.HasTag(tag) {
			out = append(out, def)
		}
	}
	return out
}

// Len returns the number of registered definitions, duplicates included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rules)
}

package backend

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrUnknownModel is returned by Registry.Get for names that were never
// registered. Handlers map it to a client error.
var ErrUnknownModel = errors.New("unknown model name")

// Registry is the fixed set of named backends available to the service.
// It is populated once at startup and never mutated afterwards, so it is
// safe for concurrent use without locking.
type Registry struct {
	backends     map[string]Backend
	defaultModel string
}

// NewRegistry builds a registry from the given backends keyed by model name.
// The default model must be one of the keys.
func NewRegistry(backends map[string]Backend, defaultModel string) (*Registry, error) {
	if len(backends) == 0 {
		return nil, errors.New("at least one backend is required")
	}
	if _, ok := backends[defaultModel]; !ok {
		return nil, errors.Errorf("default model %q is not registered", defaultModel)
	}
	owned := make(map[string]Backend, len(backends))
	for name, be := range backends {
		if be == nil {
			return nil, errors.Errorf("backend for model %q is nil", name)
		}
		owned[name] = be
	}
	return &Registry{
		backends:     owned,
		defaultModel: defaultModel,
	}, nil
}

// Get resolves a model name to its backend. The empty name resolves to the
// default model.
func (r *Registry) Get(name string) (Backend, error) {
	if name == "" {
		name = r.defaultModel
	}
	be, ok := r.backends[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownModel, name)
	}
	return be, nil
}

// DefaultModel returns the name used when a request names no model.
func (r *Registry) DefaultModel() string {
	return r.defaultModel
}

// Names returns the registered model names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered backend keyed by model name. The returned
// map is a copy; mutating it does not affect the registry.
func (r *Registry) All() map[string]Backend {
	all := make(map[string]Backend, len(r.backends))
	for name, be := range r.backends {
		all[name] = be
	}
	return all
}

package engine

import (
	"fmt"
	"sync"

	"github.com/petrijr/decisor/pkg/api"
)

// DeciderRegistry maps workflow (name, version) pairs to decider factories.
// Registrations happen once at startup; lookups happen per decision task.
type DeciderRegistry struct {
	mu     sync.RWMutex
	byName map[string]map[string]api.DeciderFactory
}

// NewDeciderRegistry returns an empty registry.
func NewDeciderRegistry() *DeciderRegistry {
	return &DeciderRegistry{
		byName: make(map[string]map[string]api.DeciderFactory),
	}
}

// Register binds a factory to a workflow name and version. An empty version
// defaults to "v1".
func (r *DeciderRegistry) Register(name, version string, factory api.DeciderFactory) error {
	if name == "" {
		return fmt.Errorf("workflow name is required")
	}
	if factory == nil {
		return fmt.Errorf("workflow %q: factory is required", name)
	}
	if version == "" {
		version = "v1"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	versions := r.byName[name]
	if versions == nil {
		versions = make(map[string]api.DeciderFactory)
		r.byName[name] = versions
	}

	if _, exists := versions[version]; exists {
		return fmt.Errorf("workflow %q version %q already registered", name, version)
	}

	versions[version] = factory
	return nil
}

// Resolve returns a fresh Decider for the given workflow. An empty version
// defaults to "v1".
func (r *DeciderRegistry) Resolve(name, version string) (api.Decider, error) {
	if version == "" {
		version = "v1"
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.byName[name]
	if versions == nil {
		return nil, fmt.Errorf("workflow %q not registered", name)
	}
	factory, ok := versions[version]
	if !ok {
		return nil, fmt.Errorf("workflow %q version %q not registered", name, version)
	}
	return factory(), nil
}

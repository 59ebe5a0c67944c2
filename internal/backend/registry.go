package backend

import "sync"

// Factory constructs a backend instance.
type Factory func() Backend

type factoryEntry struct {
	name    string
	factory Factory
}

var (
	registryMu       sync.RWMutex
	builtinFactories []factoryEntry
)

// Register associates the provided factory with the backend name. When
// multiple factories register the same name the most recent registration
// wins.
func Register(name string, factory Factory) {
	if name == "" {
		panic("backend.Register: name must not be empty")
	}
	if factory == nil {
		panic("backend.Register: factory must not be nil")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	for i, entry := range builtinFactories {
		if entry.name == name {
			builtinFactories[i].factory = factory
			return
		}
	}

	builtinFactories = append(builtinFactories, factoryEntry{name: name, factory: factory})
}

// NewRegistry constructs the default backend registry containing all
// registered adapters.
func NewRegistry() Registry {
	registryMu.RLock()
	defer registryMu.RUnlock()

	reg := make(Registry, len(builtinFactories))
	for _, entry := range builtinFactories {
		reg[entry.name] = entry.factory()
	}
	return reg
}

package sembuf

import (
	"sync"
)

// Registry resolves forward and cyclic references between struct classes. A
// descriptor whose target type is not yet defined parks a callback under the
// target's name; when a class with that name finishes construction every
// pending callback fires exactly once with the resolved class.
//
// The registry is the one piece of shared mutable state in this package. It
// is mutex-guarded so that type definitions may be loaded from multiple
// goroutines, and becomes read-mostly once definitions complete.
type Registry struct {
	mu      sync.Mutex
	classes map[string]*StructClass
	pending map[string][]func(*StructClass)
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		classes: map[string]*StructClass{},
		pending: map[string][]func(*StructClass){},
	}
}

// DefaultRegistry is the registry used by classes built without
// WithRegistry. Single-process programs rarely need another one.
var DefaultRegistry = NewRegistry()

// Lookup returns the class registered under name, if any.
func (r *Registry) Lookup(name string) (*StructClass, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[name]
	return c, ok
}

// resolve invokes cb with the class named name: immediately if it is already
// registered, otherwise once it finishes construction.
func (r *Registry) resolve(name string, cb func(*StructClass)) {
	r.mu.Lock()
	if c, ok := r.classes[name]; ok {
		r.mu.Unlock()
		cb(c)
		return
	}
	r.pending[name] = append(r.pending[name], cb)
	r.mu.Unlock()
}

// register records a finished class and fires any callbacks parked under its
// name. Registering two classes under one name is a definition-time error.
func (r *Registry) register(c *StructClass) error {
	r.mu.Lock()
	if _, ok := r.classes[c.name]; ok {
		r.mu.Unlock()
		return typeErrf(c.name, "a struct class named %q is already registered", c.name)
	}
	r.classes[c.name] = c
	cbs := r.pending[c.name]
	delete(r.pending, c.name)
	r.mu.Unlock()

	// Callbacks run outside the lock; they may finalize descriptors on
	// classes that are themselves registering.
	for _, cb := range cbs {
		cb(c)
	}
	return nil
}

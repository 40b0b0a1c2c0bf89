package env

import (
	"fmt"
	"sort"
	"sync"
)

// Descriptor describes a registered simulation.
type Descriptor struct {
	ID    string
	Title string
}

// Factory creates a new, not yet reset simulation instance.
type Factory func(opts Options) (Env, error)

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a simulation factory to the registry.
// Panics if a simulation with the same ID is already registered.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("env: simulation %q already registered", id))
	}

	factories[id] = f
	titles[id] = title
}

// List returns all registered simulations sorted by ID.
func List() []Descriptor {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Descriptor, 0, len(factories))
	for id := range factories {
		result = append(result, Descriptor{ID: id, Title: titles[id]})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Make builds a simulation by ID.
// Unknown IDs and factory failures are reported as *ConfigError.
func Make(id string, opts Options) (Env, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, unknownEnv(id)
	}

	e, err := f(opts)
	if err != nil {
		return nil, &ConfigError{Field: id, Err: err}
	}
	return e, nil
}

// Check returns a *ConfigError wrapping ErrUnknownEnv if id is not registered.
func Check(id string) error {
	if !Exists(id) {
		return unknownEnv(id)
	}
	return nil
}

func unknownEnv(id string) error {
	return &ConfigError{Field: "env", Err: fmt.Errorf("%w %q", ErrUnknownEnv, id)}
}

// Exists checks if a simulation with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

package driver

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Factory creates a driver from validated options
type Factory func(opts Options) (Driver, error)

var (
	registryMu sync.Mutex
	factories  = map[string]Factory{}
	created    = map[string]bool{}
)

func init() {
	Register(NameGo, newGoDriver)
	Register(NameScalar, newScalarDriver)
}

// Register adds a driver factory under name, replacing any previous one
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
	delete(created, name)
}

// New creates the named driver
func New(name string, opts Options) (Driver, error) {
	registryMu.Lock()
	factory, ok := factories[name]
	first := ok && !created[name]
	if first {
		created[name] = true
	}
	registryMu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownDriver, name, Names())
	}
	if first {
		slog.Debug("resolved driver factory", "name", name)
	}

	if opts.Logger == nil {
		opts.Logger = DefaultOptions().Logger
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("creating driver %q: %w", name, err)
	}
	return factory(opts)
}

// Names returns the registered driver names in sorted order
func Names() []string {
	registryMu.Lock()
	defer registryMu.Unlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

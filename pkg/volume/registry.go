package volume

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// StructuredRegular is the registered type name of StructuredVolume
const StructuredRegular = "structured_regular"

var ErrUnknownType = errors.New("unknown volume type")

// Factory creates an uncommitted volume
type Factory func() Volume

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func init() {
	Register(StructuredRegular, func() Volume { return NewStructuredVolume() })
}

// Register makes a volume type available by name, replacing any previous registration
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates a volume of the named type
func New(name string) (Volume, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return factory(), nil
}

// Types returns the registered type names in sorted order
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

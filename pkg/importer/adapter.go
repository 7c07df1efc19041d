package importer

import (
	"fmt"
	"sort"
	"sync"
)

// Adapter describes how one country lays out its election files.
type Adapter interface {
	// ID returns the unique identifier of this adapter (e.g. "no-storting").
	ID() string
	// Country returns the ISO country code the adapter seeds (e.g. "NO").
	Country() string
	// Description returns a human-readable description.
	Description() string
	// Layout enumerates the source files of the country below root.
	Layout(root string) (*Layout, error)
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID, or an error if not found.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown country adapter: %q", id)
	}
	return a, nil
}

// ForCountry returns the first adapter, by ID, seeding the given country.
func ForCountry(code string) (Adapter, error) {
	for _, a := range All() {
		if a.Country() == code {
			return a, nil
		}
	}
	return nil, fmt.Errorf("no adapter for country %q", code)
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

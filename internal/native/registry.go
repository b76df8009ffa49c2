package native

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Library)
)

// Register makes a library available under lib.Name(). Registering the same
// name twice panics.
func Register(lib Library) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if lib == nil {
		panic("native: Register library is nil")
	}
	name := lib.Name()
	if _, dup := registry[name]; dup {
		panic("native: Register called twice for library " + name)
	}
	registry[name] = lib
}

// Lookup returns the library registered under name.
func Lookup(name string) (Library, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	lib, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("native: unknown library %q (registered: %v)", name, namesLocked())
	}
	return lib, nil
}

// Names returns the sorted names of all registered libraries.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

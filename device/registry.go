package device

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/rix"
)

// ErrNotAvailable is returned by Open for a name nothing registered.
var ErrNotAvailable = errors.New("device: not available")

// Factory creates a device for cfg.
type Factory func(cfg rix.Config) (Device, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes a device available under name. Device packages call it
// from init. A later registration of the same name replaces the earlier.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = f
}

// Unregister removes name from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Open creates the device registered as name.
func Open(name string, cfg rix.Config) (Device, error) {
	registryMu.RLock()
	f, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotAvailable, name)
	}
	d, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", name, err)
	}
	rix.Logger().Info("device: opened", "device", name)
	return d, nil
}

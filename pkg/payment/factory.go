package payment

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
)

// Constructor builds a provider; configuration is captured in the closure
// at registration time.
type Constructor func() Provider

// UnsupportedError is returned when a name has no registered constructor.
type UnsupportedError struct {
	Name      string
	Available []string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("payment provider %q not supported, available: [%s]",
		e.Name, strings.Join(e.Available, ", "))
}

// Factory maps gateway names to constructors. Lookups are safe for
// concurrent use; registration is intended for startup and tests.
type Factory struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

func NewFactory() *Factory {
	return &Factory{ctors: make(map[string]Constructor)}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a constructor under name, overwriting (with a warning) any
// existing registration.
func (f *Factory) Register(name string, ctor Constructor) {
	key := normalize(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.ctors[key]; exists {
		log.Printf("[payment] overwriting registered provider %q", key)
	}
	f.ctors[key] = ctor
}

func (f *Factory) Unregister(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ctors, normalize(name))
}

func (f *Factory) IsSupported(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ctors[normalize(name)]
	return ok
}

// Available returns registered gateway names, sorted.
func (f *Factory) Available() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.ctors))
	for name := range f.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the provider registered under name (case/whitespace
// insensitive).
func (f *Factory) New(name string) (Provider, error) {
	key := normalize(name)
	f.mu.RLock()
	ctor, ok := f.ctors[key]
	f.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedError{Name: key, Available: f.Available()}
	}
	return ctor(), nil
}

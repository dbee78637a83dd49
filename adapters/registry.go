package adapters

import (
	"fmt"
	"sync"

	"github.com/brettbedarf/tilefs"
	"github.com/brettbedarf/tilefs/config"
)

// Store is an opened document network backend
type Store interface {
	// Client returns the backend as seen by identity
	Client(identity string) tilefs.Backend
	// Close flushes and releases the store
	Close() error
}

// StoreProvider opens stores of one type
type StoreProvider interface {
	NewStore(opts config.StoreOptions) (Store, error)
}

// Registry maps store type keys to providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]StoreProvider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]StoreProvider{}}
}

// Register ties a provider to a store type. The first registration of a type
// wins; later ones are ignored.
func (r *Registry) Register(storeType string, provider StoreProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[storeType]; ok {
		return
	}
	r.providers[storeType] = provider
}

func (r *Registry) GetProvider(storeType string) (StoreProvider, error) {
	r.mu.RLock()
	p, ok := r.providers[storeType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no provider for store type %q", storeType)
	}
	return p, nil
}

// Open picks the provider by opts.Type and opens a store with it
func (r *Registry) Open(opts config.StoreOptions) (Store, error) {
	if opts.Type == "" {
		return nil, fmt.Errorf("missing store type")
	}
	p, err := r.GetProvider(opts.Type)
	if err != nil {
		return nil, err
	}
	return p.NewStore(opts)
}

var defaultRegistry = NewRegistry()

// Register adds a provider to the default registry.
// Should be called for each store type during app init.
func Register(storeType string, provider StoreProvider) {
	defaultRegistry.Register(storeType, provider)
}

// Open opens a store from the default registry.
// All expected store types should be registered with [Register] or
// [RegisterBuiltins] first.
func Open(opts config.StoreOptions) (Store, error) {
	return defaultRegistry.Open(opts)
}

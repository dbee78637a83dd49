package adapters

import (
	"fmt"

	"github.com/brettbedarf/tilefs"
	"github.com/brettbedarf/tilefs/config"
	"github.com/brettbedarf/tilefs/internal/util"
)

type BuiltInStoreType = string

const (
	MemoryStoreType   BuiltInStoreType = "memory"
	SnapshotStoreType BuiltInStoreType = "snapshot"
)

// RegisterBuiltins registers all built-in stores by default
// or only the specific ones if keys are provided
func RegisterBuiltins(stores ...BuiltInStoreType) {
	if len(stores) == 0 {
		// Include all built-in stores here when adding implementations
		stores = append(stores, MemoryStoreType, SnapshotStoreType)
	}

	for _, key := range stores {
		switch key {
		case MemoryStoreType:
			Register(key, MemoryProvider{})
		case SnapshotStoreType:
			Register(key, SnapshotProvider{})
		}
	}
}

// MemoryProvider opens a fresh process-local network. Its state is lost on close.
type MemoryProvider struct{}

func (MemoryProvider) NewStore(config.StoreOptions) (Store, error) {
	return &memoryStore{network: NewNetwork()}, nil
}

type memoryStore struct {
	network *Network
}

func (s *memoryStore) Client(identity string) tilefs.Backend {
	return s.network.Client(identity)
}

func (s *memoryStore) Close() error {
	return nil
}

// SnapshotProvider opens a network restored from the JSON file at opts.Path
// and saves it back on close.
type SnapshotProvider struct{}

func (SnapshotProvider) NewStore(opts config.StoreOptions) (Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("snapshot store requires a path")
	}
	network, err := LoadSnapshot(opts.Path)
	if err != nil {
		return nil, err
	}
	return &snapshotStore{network: network, path: opts.Path}, nil
}

type snapshotStore struct {
	network *Network
	path    string
}

func (s *snapshotStore) Client(identity string) tilefs.Backend {
	return s.network.Client(identity)
}

func (s *snapshotStore) Close() error {
	if err := s.network.SaveSnapshot(s.path); err != nil {
		logger := util.GetLogger("snapshotStore.Close")
		logger.Error().Err(err).Str("path", s.path).Msg("Failed to save snapshot")
		return err
	}
	return nil
}

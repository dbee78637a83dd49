package mocks

import (
	"github.com/brettbedarf/tilefs"
	"github.com/brettbedarf/tilefs/adapters"
	"github.com/brettbedarf/tilefs/config"
	"github.com/stretchr/testify/mock"
)

// MockStoreProvider implements adapters.StoreProvider for testing across packages
type MockStoreProvider struct {
	mock.Mock
}

func (m *MockStoreProvider) NewStore(opts config.StoreOptions) (adapters.Store, error) {
	args := m.Called(opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(adapters.Store), args.Error(1)
}

var _ adapters.StoreProvider = (*MockStoreProvider)(nil)

// MockStore implements adapters.Store for testing across packages
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Client(identity string) tilefs.Backend {
	args := m.Called(identity)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(tilefs.Backend)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ adapters.Store = (*MockStore)(nil)

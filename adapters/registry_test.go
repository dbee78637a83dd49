package adapters_test

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/brettbedarf/tilefs/adapters"
	"github.com/brettbedarf/tilefs/config"
	"github.com/brettbedarf/tilefs/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegister_SingleProvider(t *testing.T) {
	t.Parallel()

	r := adapters.NewRegistry()
	mockProvider := &mocks.MockStoreProvider{}

	r.Register(adapters.MemoryStoreType, mockProvider)
	provider, err := r.GetProvider(adapters.MemoryStoreType)

	require.NoError(t, err)
	assert.Equal(t, mockProvider, provider)
}

func TestRegister_MultipleProviders(t *testing.T) {
	t.Parallel()

	r := adapters.NewRegistry()
	mockProvider1 := &mocks.MockStoreProvider{}
	mockProvider2 := &mocks.MockStoreProvider{}

	r.Register("test1", mockProvider1)
	r.Register("test2", mockProvider2)

	provider1, err := r.GetProvider("test1")
	require.NoError(t, err)
	assert.Same(t, mockProvider1, provider1)

	provider2, err := r.GetProvider("test2")
	require.NoError(t, err)
	assert.Same(t, mockProvider2, provider2)
}

func TestRegister_DuplicateProvider(t *testing.T) {
	t.Parallel()

	r := adapters.NewRegistry()
	mockProvider1 := &mocks.MockStoreProvider{}
	mockProvider2 := &mocks.MockStoreProvider{}

	r.Register("test", mockProvider1)
	r.Register("test", mockProvider2)

	provider, err := r.GetProvider("test")
	require.NoError(t, err)
	assert.Same(t, mockProvider1, provider)
}

func TestRegister_Concurrent(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	r := adapters.NewRegistry()

	for i := range 100 {
		wg.Go(func() {
			storeType := fmt.Sprintf("test%d", i)
			mockProvider := &mocks.MockStoreProvider{}
			r.Register(storeType, mockProvider)
			provider, err := r.GetProvider(storeType)
			assert.NoError(t, err)
			assert.Same(t, mockProvider, provider)
			// Small delay to increase chance of race conditions
			time.Sleep(time.Microsecond)
		})
	}
	wg.Wait()
}

func TestGetProvider_NonExistentProvider(t *testing.T) {
	t.Parallel()

	r := adapters.NewRegistry()
	_, err := r.GetProvider("nonexistent")
	assert.Error(t, err)
}

func TestOpen_ValidOptions(t *testing.T) {
	t.Parallel()

	r := adapters.NewRegistry()
	mockProvider := &mocks.MockStoreProvider{}
	mockStore := &mocks.MockStore{}
	r.Register("test", mockProvider)

	opts := config.StoreOptions{Type: "test", Path: "/tmp/x"}
	mockProvider.On("NewStore", opts).Return(mockStore, nil)
	ret, err := r.Open(opts)
	require.NoError(t, err)
	mockProvider.AssertCalled(t, "NewStore", opts)
	assert.Equal(t, mockStore, ret)
}

func TestOpen_MissingType(t *testing.T) {
	t.Parallel()

	r := adapters.NewRegistry()
	r.Register("test", &mocks.MockStoreProvider{})

	_, err := r.Open(config.StoreOptions{Path: "x"})
	assert.Error(t, err)
}

func TestOpen_UnregisteredProvider(t *testing.T) {
	t.Parallel()

	r := adapters.NewRegistry()
	_, err := r.Open(config.StoreOptions{Type: "foo"})
	assert.Error(t, err)
}

func TestOpen_ProviderError(t *testing.T) {
	t.Parallel()

	r := adapters.NewRegistry()
	mockProvider := &mocks.MockStoreProvider{}
	r.Register("test", mockProvider)

	expErr := fmt.Errorf("test error")
	mockProvider.On("NewStore", mock.Anything).Return(nil, expErr)

	_, err := r.Open(config.StoreOptions{Type: "test"})
	require.Error(t, err)
	mockProvider.AssertExpectations(t)
	assert.Equal(t, expErr, err)
}

func TestBuiltins(t *testing.T) {
	adapters.RegisterBuiltins()

	t.Run("memory", func(t *testing.T) {
		store, err := adapters.Open(config.StoreOptions{Type: adapters.MemoryStoreType})
		require.NoError(t, err)
		assert.NotNil(t, store.Client("did:key:alice"))
		assert.NoError(t, store.Close())
	})

	t.Run("snapshot requires path", func(t *testing.T) {
		_, err := adapters.Open(config.StoreOptions{Type: adapters.SnapshotStoreType})
		assert.Error(t, err)
	})

	t.Run("snapshot saves on close", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "net.json")
		store, err := adapters.Open(config.StoreOptions{Type: adapters.SnapshotStoreType, Path: path})
		require.NoError(t, err)
		assert.NoFileExists(t, path)
		require.NoError(t, store.Close())
		assert.FileExists(t, path)
	})

	t.Run("snapshot close reports save failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "net.json")
		store, err := adapters.Open(config.StoreOptions{Type: adapters.SnapshotStoreType, Path: path})
		require.NoError(t, err)
		assert.Error(t, store.Close())
		assert.NoFileExists(t, path)
	})
}

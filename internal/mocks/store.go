package mocks

import (
	"context"

	"github.com/brettbedarf/tilefs"
	"github.com/stretchr/testify/mock"
)

// MockDocumentStore implements tilefs.DocumentStore for testing across packages
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) CreateDocument(ctx context.Context, content tilefs.Content, meta tilefs.Metadata, mode tilefs.WriteMode) (tilefs.DocumentID, error) {
	args := m.Called(ctx, content, meta, mode)

	// Handle function return types (for derived ids)
	if fn, ok := args.Get(0).(func(tilefs.Metadata) tilefs.DocumentID); ok {
		return fn(meta), args.Error(1)
	}
	return args.Get(0).(tilefs.DocumentID), args.Error(1)
}

func (m *MockDocumentStore) LoadDocument(ctx context.Context, id tilefs.DocumentID) (*tilefs.Document, error) {
	args := m.Called(ctx, id)

	if fn, ok := args.Get(0).(func(tilefs.DocumentID) *tilefs.Document); ok {
		return fn(id), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tilefs.Document), args.Error(1)
}

func (m *MockDocumentStore) UpdateDocument(ctx context.Context, id tilefs.DocumentID, content tilefs.Content) error {
	args := m.Called(ctx, id, content)
	return args.Error(0)
}

var _ tilefs.DocumentStore = (*MockDocumentStore)(nil)

// MockSequenceStore implements tilefs.SequenceStore for testing across packages
type MockSequenceStore struct {
	mock.Mock
}

func (m *MockSequenceStore) CreateSequence(ctx context.Context, capacityHint int) (tilefs.SequenceID, error) {
	args := m.Called(ctx, capacityHint)
	return args.Get(0).(tilefs.SequenceID), args.Error(1)
}

func (m *MockSequenceStore) LoadSequence(ctx context.Context, id tilefs.SequenceID) (tilefs.Sequence, error) {
	args := m.Called(ctx, id)

	if fn, ok := args.Get(0).(func(tilefs.SequenceID) tilefs.Sequence); ok {
		return fn(id), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(tilefs.Sequence), args.Error(1)
}

var _ tilefs.SequenceStore = (*MockSequenceStore)(nil)

// MockBackend combines both store mocks into a tilefs.Backend
type MockBackend struct {
	*MockDocumentStore
	*MockSequenceStore
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		MockDocumentStore: &MockDocumentStore{},
		MockSequenceStore: &MockSequenceStore{},
	}
}

// AssertExpectations asserts on both embedded mocks
func (m *MockBackend) AssertExpectations(t mock.TestingT) bool {
	docs := m.MockDocumentStore.AssertExpectations(t)
	seqs := m.MockSequenceStore.AssertExpectations(t)
	return docs && seqs
}

var _ tilefs.Backend = (*MockBackend)(nil)

// MockSequence implements tilefs.Sequence for testing across packages
type MockSequence struct {
	mock.Mock
}

func (m *MockSequence) ID() tilefs.SequenceID {
	args := m.Called()
	return args.Get(0).(tilefs.SequenceID)
}

func (m *MockSequence) Insert(ctx context.Context, value string) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

func (m *MockSequence) GetFirstN(ctx context.Context, n int) ([]tilefs.Entry, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tilefs.Entry), args.Error(1)
}

func (m *MockSequence) GetLastN(ctx context.Context, n int) ([]tilefs.Entry, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tilefs.Entry), args.Error(1)
}

var _ tilefs.Sequence = (*MockSequence)(nil)

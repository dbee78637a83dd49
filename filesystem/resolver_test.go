package filesystem

import (
	"context"
	"errors"
	"testing"

	"github.com/brettbedarf/tilefs"
	"github.com/brettbedarf/tilefs/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIsNode(t *testing.T) {
	t.Parallel()

	folder := mustPath(t, "C:/folder")
	file := mustPath(t, "C:/folder//file.ext")
	folderContent := tilefs.Content{folderIndexKey: "seq:1", fileIndexKey: "seq:2"}
	fileContent := tilefs.Content{historyIndexKey: "seq:3"}

	doc := func(content tilefs.Content, tags ...string) *tilefs.Document {
		return &tilefs.Document{ID: "tile:x", Metadata: tilefs.Metadata{Tags: tags}, Content: content}
	}

	tests := []struct {
		desc string
		doc  *tilefs.Document
		path Path
		want bool
	}{
		{"folder", doc(folderContent, "C:/folder"), folder, true},
		{"file", doc(fileContent, "C:/folder//file.ext"), file, true},
		{"nil document", nil, folder, false},
		{"empty content", doc(nil, "C:/folder"), folder, false},
		{"no tags", doc(folderContent), folder, false},
		{"extra tag", doc(folderContent, "C:/folder", "x"), folder, false},
		{"other path", doc(folderContent, "C:/other"), folder, false},
		{"missing files index", doc(tilefs.Content{folderIndexKey: "seq:1"}, "C:/folder"), folder, false},
		{"folder content on file", doc(folderContent, "C:/folder//file.ext"), file, false},
		{"file content on folder", doc(fileContent, "C:/folder"), folder, false},
		{"empty index locator", doc(tilefs.Content{historyIndexKey: ""}, "C:/folder//file.ext"), file, false},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isNode(tt.doc, tt.path))
		})
	}
}

// expectProbe sets up a probe of p that finds nothing
func expectProbe(b *mocks.MockBackend, p Path, id tilefs.DocumentID) {
	b.MockDocumentStore.On("CreateDocument", mock.Anything, tilefs.Content(nil), LocatorRequest(alice, p), tilefs.ProbeMode).
		Return(id, nil)
	b.MockDocumentStore.On("LoadDocument", mock.Anything, id).
		Return(&tilefs.Document{ID: id}, nil).Once()
}

func TestResolver_CreateFileCallSequence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := mocks.NewMockBackend()
	p := mustPath(t, "C://notes.txt")
	id := tilefs.DocumentID("tile:notes")
	content := tilefs.Content{historyIndexKey: "seq:h", versionKey: tilefs.Version}

	expectProbe(b, p, id)
	b.MockDocumentStore.On("CreateDocument", mock.Anything, tilefs.Content(nil), LocatorRequest(alice, p), tilefs.TemporaryMode).
		Return(id, nil).Once()
	b.MockSequenceStore.On("CreateSequence", mock.Anything, 256).Return(tilefs.SequenceID("seq:h"), nil).Once()
	b.MockDocumentStore.On("UpdateDocument", mock.Anything, id, content).Return(nil).Once()
	b.MockDocumentStore.On("LoadDocument", mock.Anything, id).Return(&tilefs.Document{
		ID:       id,
		Metadata: LocatorRequest(alice, p),
		Content:  content,
	}, nil).Once()
	history := &mocks.MockSequence{}
	b.MockSequenceStore.On("LoadSequence", mock.Anything, tilefs.SequenceID("seq:h")).Return(history, nil).Once()

	r := NewResolver(alice, b, 256)
	node, err := r.Resolve(ctx, "C://notes.txt", OpenOptions{CreateIfUndefined: true, Hidden: true, Temporary: true})
	require.NoError(t, err)
	require.NotNil(t, node)
	file := node.(*File)
	assert.Equal(t, id, file.ID())
	assert.Same(t, history, file.History.seq)

	// hidden: the parent is never probed
	b.AssertExpectations(t)
	b.MockDocumentStore.AssertNumberOfCalls(t, "CreateDocument", 2)
}

func TestResolver_ErrorsPropagate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("boom")
	p := mustPath(t, "C:")
	id := tilefs.DocumentID("tile:c")

	tests := []struct {
		desc  string
		setup func(b *mocks.MockBackend)
	}{
		{"probe", func(b *mocks.MockBackend) {
			b.MockDocumentStore.On("CreateDocument", mock.Anything, mock.Anything, mock.Anything, tilefs.ProbeMode).
				Return(tilefs.DocumentID(""), boom)
		}},
		{"load", func(b *mocks.MockBackend) {
			b.MockDocumentStore.On("CreateDocument", mock.Anything, mock.Anything, mock.Anything, tilefs.ProbeMode).
				Return(id, nil)
			b.MockDocumentStore.On("LoadDocument", mock.Anything, id).Return(nil, boom)
		}},
		{"commit", func(b *mocks.MockBackend) {
			expectProbe(b, p, id)
			b.MockDocumentStore.On("CreateDocument", mock.Anything, mock.Anything, mock.Anything, tilefs.DurableMode).
				Return(tilefs.DocumentID(""), boom)
		}},
		{"allocate", func(b *mocks.MockBackend) {
			expectProbe(b, p, id)
			b.MockDocumentStore.On("CreateDocument", mock.Anything, mock.Anything, mock.Anything, tilefs.DurableMode).
				Return(id, nil)
			b.MockSequenceStore.On("CreateSequence", mock.Anything, mock.Anything).Return(tilefs.SequenceID(""), boom)
		}},
		{"update", func(b *mocks.MockBackend) {
			expectProbe(b, p, id)
			b.MockDocumentStore.On("CreateDocument", mock.Anything, mock.Anything, mock.Anything, tilefs.DurableMode).
				Return(id, nil)
			b.MockSequenceStore.On("CreateSequence", mock.Anything, mock.Anything).Return(tilefs.SequenceID("seq:1"), nil)
			b.MockDocumentStore.On("UpdateDocument", mock.Anything, id, mock.Anything).Return(boom)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()
			b := mocks.NewMockBackend()
			tt.setup(b)

			node, err := NewResolver(alice, b, 256).Resolve(ctx, "C:", create)
			assert.ErrorIs(t, err, boom)
			assert.Nil(t, node)
		})
	}
}

func TestResolver_NotFoundIsAbsent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := mocks.NewMockBackend()
	id := tilefs.DocumentID("tile:c")

	b.MockDocumentStore.On("CreateDocument", mock.Anything, mock.Anything, mock.Anything, tilefs.ProbeMode).Return(id, nil)
	b.MockDocumentStore.On("LoadDocument", mock.Anything, id).Return(nil, tilefs.ErrNotFound)

	node, err := NewResolver(alice, b, 256).Resolve(ctx, "C:", OpenOptions{})
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestResolver_UnauthorizedNeverWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := mocks.NewMockBackend()
	p := mustPath(t, "C:")
	id := tilefs.DocumentID("tile:c")

	expectProbe(b, p, id)

	node, err := NewResolver(bob, b, 256).Resolve(ctx, "C:", OpenOptions{Controller: alice, CreateIfUndefined: true})
	require.NoError(t, err)
	assert.Nil(t, node)
	b.MockDocumentStore.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything, mock.Anything, tilefs.DurableMode)
	b.MockDocumentStore.AssertNotCalled(t, "UpdateDocument", mock.Anything, mock.Anything, mock.Anything)
	b.MockSequenceStore.AssertNotCalled(t, "CreateSequence", mock.Anything, mock.Anything)
}

func TestResolver_InvalidPathBeforeIO(t *testing.T) {
	t.Parallel()
	b := mocks.NewMockBackend()

	_, err := NewResolver(alice, b, 256).Resolve(context.Background(), "a//b//c", create)
	assert.ErrorIs(t, err, tilefs.ErrInvalidPath)
	b.MockDocumentStore.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	b.MockDocumentStore.AssertNotCalled(t, "LoadDocument", mock.Anything, mock.Anything)
}

package filesystem

import (
	"context"
	"errors"
	"testing"

	"github.com/brettbedarf/tilefs"
	"github.com/brettbedarf/tilefs/adapters"
	"github.com/brettbedarf/tilefs/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mustPath(t *testing.T, raw string) Path {
	t.Helper()
	p, err := ParsePath(raw)
	require.NoError(t, err)
	return p
}

func TestLocatorRequest(t *testing.T) {
	t.Parallel()

	meta := LocatorRequest(alice, mustPath(t, "/C:/folder/"))
	assert.Equal(t, tilefs.Metadata{
		Controllers:   []string{alice},
		Family:        tilefs.FolderFamily,
		Tags:          []string{"C:/folder"},
		Deterministic: true,
	}, meta)

	meta = LocatorRequest(alice, mustPath(t, "C:/folder//file.ext"))
	assert.Equal(t, tilefs.FileFamily, meta.Family)
	assert.Equal(t, []string{"C:/folder//file.ext"}, meta.Tags)
}

func TestDeriver_Locate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	network := adapters.NewNetwork()
	d := NewDeriver(network.Client(bob))

	id1, err := d.Locate(ctx, alice, mustPath(t, "C:/folder"))
	require.NoError(t, err)
	id2, err := d.Locate(ctx, alice, mustPath(t, "/C:/folder/"))
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "equivalent spellings derive the same locator")

	// another caller derives the same locator
	id3, err := NewDeriver(network.Client(alice)).Locate(ctx, alice, mustPath(t, "C:/folder"))
	require.NoError(t, err)
	assert.Equal(t, id1, id3)

	other, err := d.Locate(ctx, bob, mustPath(t, "C:/folder"))
	require.NoError(t, err)
	assert.NotEqual(t, id1, other, "controller is part of the locator")

	file, err := d.Locate(ctx, alice, mustPath(t, "C://folder"))
	require.NoError(t, err)
	assert.NotEqual(t, id1, file)

	assert.Zero(t, network.DocumentCount(), "deriving never commits")
}

func TestDeriver_LocateProbesOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := mustPath(t, "C:")

	docs := &mocks.MockDocumentStore{}
	docs.On("CreateDocument", ctx, tilefs.Content(nil), LocatorRequest(alice, p), tilefs.ProbeMode).
		Return(tilefs.DocumentID("tile:c"), nil).Once()

	id, err := NewDeriver(docs).Locate(ctx, alice, p)
	require.NoError(t, err)
	assert.Equal(t, tilefs.DocumentID("tile:c"), id)
	docs.AssertExpectations(t)

	boom := errors.New("boom")
	failing := &mocks.MockDocumentStore{}
	failing.On("CreateDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(tilefs.DocumentID(""), boom)
	_, err = NewDeriver(failing).Locate(ctx, alice, p)
	assert.ErrorIs(t, err, boom)
}

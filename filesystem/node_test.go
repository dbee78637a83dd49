package filesystem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_History(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs, _ := newTestFS(t, alice)

	file := openFile(t, fs, "C://log.txt", create)
	_, ok, err := file.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "no revision yet")

	for _, rev := range []string{"v1", "v2", "v3"} {
		require.NoError(t, file.Append(ctx, rev))
	}

	content, ok, err := file.Current(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v3", content)

	revisions, err := file.History.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"v2", "v3"}, revisions)

	// reopening sees the same history
	again := openFile(t, fs, "C://log.txt", OpenOptions{})
	content, _, err = again.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v3", content)
}

func TestFolder_Children(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs, _ := newTestFS(t, alice)

	root := openFolder(t, fs, "C:", create)
	for _, rel := range []string{"b", "a", "/z.txt", "a//y.txt"} {
		node, err := root.Open(ctx, rel, create)
		require.NoError(t, err)
		require.NotNil(t, node, rel)
	}
	// a stale duplicate registration
	require.NoError(t, root.Folders.Register(ctx, "b"))

	folders, files, err := root.Children(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, folders)
	assert.Equal(t, []string{"/z.txt"}, files)

	raw, err := root.Folders.ListOldest(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "b"}, raw)

	limited, _, err := root.Children(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, limited)
}

func TestFolder_OpenInvalid(t *testing.T) {
	t.Parallel()
	fs, _ := newTestFS(t, alice)
	root := openFolder(t, fs, "C:", create)

	_, err := root.Open(context.Background(), "", create)
	assert.Error(t, err)
}

func TestDedup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b"}, dedup([]string{"a", "b", "a", "b"}))
	assert.Empty(t, dedup(nil))
}

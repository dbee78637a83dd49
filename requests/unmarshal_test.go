package requests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/tilefs"
)

func TestUnmarshalNodeRequest(t *testing.T) {
	t.Parallel()

	req, err := UnmarshalNodeRequest([]byte(`{"path":"C:/docs//a.txt","content":"hello","hidden":true}`))
	require.NoError(t, err)
	assert.Equal(t, "C:/docs//a.txt", req.Path)
	assert.True(t, req.Hidden)
	assert.False(t, req.Temporary)
	require.NotNil(t, req.Content)
	assert.Equal(t, "hello", *req.Content)
	_, err = uuid.Parse(req.ID)
	assert.NoError(t, err, "id defaults to a uuid")

	req, err = UnmarshalNodeRequest([]byte(`{"path":"C:","id":"mine"}`))
	require.NoError(t, err)
	assert.Equal(t, "mine", req.ID)
	assert.Nil(t, req.Content)
}

func TestUnmarshalNodeRequest_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		data string
		desc string
	}{
		{`{"path":"a//b//c"}`, "invalid path"},
		{`{}`, "missing path"},
		{`{"path":"C:/docs","content":"x"}`, "content on folder"},
		{`{"path":`, "malformed json"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()
			_, err := UnmarshalNodeRequest([]byte(tt.data))
			assert.Error(t, err)
		})
	}

	_, err := UnmarshalNodeRequest([]byte(`{"path":""}`))
	assert.ErrorIs(t, err, tilefs.ErrInvalidPath)
}

const yamlDefs = `
- path: C:/docs
- path: C:/docs//readme.md
  content: |
    # Readme
- path: C:/tmp//scratch
  temporary: true
  hidden: true
`

const jsonDefs = `[
  {"path": "C:/docs"},
  {"path": "C:/docs//readme.md", "content": "# Readme\n"},
  {"path": "C:/tmp//scratch", "temporary": true, "hidden": true}
]`

func TestUnmarshalNodeRequests(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		ext  string
		data string
	}{
		{".yaml", yamlDefs},
		{".yml", yamlDefs},
		{".json", jsonDefs},
	} {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			reqs, err := UnmarshalNodeRequests([]byte(tt.data), tt.ext)
			require.NoError(t, err)
			require.Len(t, reqs, 3)

			assert.Equal(t, "C:/docs", reqs[0].Path)
			assert.Nil(t, reqs[0].Content)
			require.NotNil(t, reqs[1].Content)
			assert.Equal(t, "# Readme\n", *reqs[1].Content)
			assert.True(t, reqs[2].Temporary)
			assert.True(t, reqs[2].Hidden)
			assert.NotEqual(t, reqs[0].ID, reqs[1].ID)
		})
	}
}

func TestUnmarshalNodeRequests_Errors(t *testing.T) {
	t.Parallel()

	_, err := UnmarshalNodeRequests([]byte(jsonDefs), ".toml")
	assert.Error(t, err)

	_, err = UnmarshalNodeRequests([]byte(`[{"path":"ok"},{"path":"a//b//c"}]`), ".json")
	assert.ErrorIs(t, err, tilefs.ErrInvalidPath)
	assert.Contains(t, err.Error(), "node definition 1")
}

func TestLoadNodeRequestsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nodes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDefs), 0o644))

	reqs, err := LoadNodeRequestsFile(path)
	require.NoError(t, err)
	assert.Len(t, reqs, 3)

	_, err = LoadNodeRequestsFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

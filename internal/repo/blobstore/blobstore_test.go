package blobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	in := map[string]int{"message_received": 3, "help_command": 1}
	require.NoError(t, store.Save("action_counts", in))

	out := map[string]int{}
	found, err := store.Load("action_counts", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestFileStoreMissingBlob(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	out := map[string]int{"sentinel": 1}
	found, err := store.Load("never_saved", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, map[string]int{"sentinel": 1}, out, "missing blob must leave out untouched")
}

func TestFileStoreOverwrite(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("counts", map[string]int{"a": 1}))
	require.NoError(t, store.Save("counts", map[string]int{"b": 2}))

	out := map[string]int{}
	found, err := store.Load("counts", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"b": 2}, out)
}

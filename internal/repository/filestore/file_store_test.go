// internal/repository/filestore/file_store_test.go
package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monetrax-ledger/internal/util"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, s.SetMany(ctx, map[string]string{"b": "2", "c": "3"}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	for k, want := range map[string]string{"a": "1", "b": "2", "c": "3"} {
		got, found, err := reopened.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, found, k)
		assert.Equal(t, want, got, k)
	}

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

func TestFileStoreMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(filepath.Join(dir, "absent.json"))
	require.NoError(t, err)
	_, found, _ := s.Get(context.Background(), "a")
	assert.False(t, found)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = Open(empty)
	assert.NoError(t, err)
}

func TestFileStoreCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path)
	assert.ErrorIs(t, err, util.ErrCorrupted)
}

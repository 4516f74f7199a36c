package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yuol96/surfstore/internal/surfstore"
)

func TestLoadMissingFileIsEmptyNotError(t *testing.T) {
	dir := t.TempDir()
	idx, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, idx)
}

func TestWriteThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := map[string]surfstore.FileInfo{
		"a.txt": {Version: 1, HashList: []string{"aa", "bb"}},
		"b.txt": surfstore.Tombstone(2),
	}

	require.NoError(t, Write(dir, want))
	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	content := "good.txt 1 aa bb\nbadline\nanothergood.txt 2 cc\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.txt"), []byte(content), 0o644))

	idx, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, idx, 2)
	assert.Equal(t, surfstore.FileInfo{Version: 1, HashList: []string{"aa", "bb"}}, idx["good.txt"])
	assert.Equal(t, surfstore.FileInfo{Version: 2, HashList: []string{"cc"}}, idx["anothergood.txt"])
}

func TestWriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, map[string]surfstore.FileInfo{"f": {Version: 1, HashList: []string{"aa"}}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "temp file must not survive a successful Write")
	}
}

package scanner

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestChunkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("this is file1"), 256) // 3328 bytes
	path := writeTempFile(t, dir, "file1.txt", content)

	refs, err := Chunk(path, 1024)
	require.NoError(t, err)
	require.Len(t, refs, 4) // ceil(3328/1024) = 4, last chunk 256 bytes

	var rebuilt []byte
	for _, r := range refs {
		rebuilt = append(rebuilt, r.Data...)
	}
	assert.Equal(t, content, rebuilt)
	assert.Len(t, refs[3].Data, 256)
}

func TestChunkEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "empty.txt", nil)

	refs, err := Chunk(path, 1024)
	require.NoError(t, err)
	assert.Len(t, refs, 0)
}

func TestChunkHashIsPositionIndependent(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte{0xAB}, 2048)
	path := writeTempFile(t, dir, "f", content)

	refs, err := Chunk(path, 1024)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, refs[0].Hash, refs[1].Hash, "identical chunks must hash identically")
}

func TestScanDirSkipsIndexAndSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "index.txt", []byte("should never be scanned"))
	writeTempFile(t, dir, "real.txt", []byte("hello"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	hashLists, blocks, err := ScanDir(dir, 1024)
	require.NoError(t, err)

	_, hasIndex := hashLists["index.txt"]
	assert.False(t, hasIndex)
	_, hasReal := hashLists["real.txt"]
	assert.True(t, hasReal)
	assert.NotEmpty(t, blocks)
}

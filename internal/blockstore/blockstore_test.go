package blockstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yuol96/surfstore/internal/surfstore"
)

func TestPutGetBlockRoundTrip(t *testing.T) {
	s := New()
	hash := s.PutBlock([]byte("hello world"))

	got, err := s.GetBlock(hash)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), got)
}

func TestPutBlockIsIdempotent(t *testing.T) {
	s := New()
	h1 := s.PutBlock([]byte("same bytes"))
	h2 := s.PutBlock([]byte("same bytes"))
	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, s.Len())
}

func TestGetBlockUnknown(t *testing.T) {
	s := New()
	_, err := s.GetBlock("deadbeef")
	assert.ErrorIs(t, err, surfstore.ErrUnknownBlock)
}

func TestHasBlocksPreservesOrderAndDuplicates(t *testing.T) {
	s := New()
	ha := s.PutBlock([]byte("a"))
	hc := s.PutBlock([]byte("c"))
	hbUnknown := HashBytes([]byte("b-never-stored"))

	got := s.HasBlocks([]string{hc, hbUnknown, ha, hc})
	assert.Equal(t, []string{hc, ha, hc}, got)
}

func TestHasBlocksIsSublist(t *testing.T) {
	s := New()
	ha := s.PutBlock([]byte("a"))
	input := []string{ha, "not-a-real-hash"}

	got := s.HasBlocks(input)
	for _, h := range got {
		found := false
		for _, in := range input {
			if in == h {
				found = true
			}
		}
		assert.True(t, found, "hasblocks returned a hash not in its input")
	}
}

func TestHashBytesStableRegardlessOfPosition(t *testing.T) {
	data := []byte("stable content")
	h1 := HashBytes(data)
	h2 := HashBytes(append([]byte(nil), data...))
	assert.Equal(t, h1, h2)
}

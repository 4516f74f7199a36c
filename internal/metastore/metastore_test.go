package metastore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Yuol96/surfstore/internal/surfstore"
)

func TestUpdateFileAcceptsOnlyNextVersion(t *testing.T) {
	s := New()

	assert.False(t, s.UpdateFile("f", 0, nil), "version 0 is never valid")
	assert.False(t, s.UpdateFile("f", 2, []string{"aa"}), "future version must be rejected")

	assert.True(t, s.UpdateFile("f", 1, []string{"aa", "bb"}))

	m := s.GetFileInfoMap()
	fi, ok := m["f"]
	assert.True(t, ok)
	assert.Equal(t, 1, fi.Version)
	assert.Equal(t, []string{"aa", "bb"}, fi.HashList)
}

func TestUpdateFileRejectsStaleAndGapVersions(t *testing.T) {
	s := New()
	assert.True(t, s.UpdateFile("f", 1, []string{"aa"}))

	assert.False(t, s.UpdateFile("f", 1, []string{"bb"}), "stale (equal) version must be rejected")
	assert.False(t, s.UpdateFile("f", 3, []string{"cc"}), "version gap must be rejected")

	m := s.GetFileInfoMap()
	assert.Equal(t, 1, m["f"].Version)
	assert.Equal(t, []string{"aa"}, m["f"].HashList)
}

func TestUpdateFileUnchangedAfterRejection(t *testing.T) {
	s := New()
	s.UpdateFile("f", 1, []string{"aa"})
	before := s.GetFileInfoMap()["f"]

	ok := s.UpdateFile("f", 5, []string{"zz"})
	assert.False(t, ok)

	after := s.GetFileInfoMap()["f"]
	assert.Equal(t, before, after)
}

func TestTombstoneAcceptedUnderSameVersionRule(t *testing.T) {
	s := New()
	s.UpdateFile("f", 1, []string{"aa"})

	assert.True(t, s.UpdateFile("f", 2, []string{"0"}))
	m := s.GetFileInfoMap()
	assert.Equal(t, 2, m["f"].Version)
	assert.Equal(t, []string{"0"}, m["f"].HashList)

	// Resurrection: a later version with a real hash list is accepted.
	assert.True(t, s.UpdateFile("f", 3, []string{"bb"}))
	m = s.GetFileInfoMap()
	assert.Equal(t, []string{"bb"}, m["f"].HashList)
}

func TestGetFileInfoMapIsASnapshotCopy(t *testing.T) {
	s := New()
	s.UpdateFile("f", 1, []string{"aa"})

	m := s.GetFileInfoMap()
	m["f"] = surfstore.FileInfo{Version: 99, HashList: []string{"zz"}}

	m2 := s.GetFileInfoMap()
	assert.Equal(t, 1, m2["f"].Version, "mutating a returned snapshot must not affect the store")
}

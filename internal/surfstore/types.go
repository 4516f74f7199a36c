// Package surfstore holds the data types shared by the server and the
// client: FileInfo, the tombstone sentinel, and the errors the protocol
// can surface. Nothing in this package talks to a network or a disk.
package surfstore

import "errors"

// TombstoneHash is the wire sentinel marking a deleted file: a hashList
// of exactly this one element. It is not a valid hex SHA-256 digest, so
// it can never collide with a real block hash.
const TombstoneHash = "0"

var (
	// ErrUnknownBlock is returned by a block store when asked for a hash
	// it has never seen.
	ErrUnknownBlock = errors.New("surfstore: unknown block")

	// ErrNoSuchFile names the case of a file name with no entry at all.
	// No function in this module returns it.
	ErrNoSuchFile = errors.New("surfstore: no such file")

	// ErrVersionConflict names the in-protocol (non-fatal) rejection of an
	// updatefile call whose version didn't immediately follow the
	// current one. UpdateFile reports that rejection as a false result,
	// not as this error; no function in this module returns it.
	ErrVersionConflict = errors.New("surfstore: version conflict")
)

// FileInfo is the server's per-file metadata: a strictly positive
// version and either a real hash list or a tombstone marker.
//
// HashList is nil/empty for a zero-length file (a real, distinguishable
// state) and is exactly []string{TombstoneHash} for a deleted file. Call
// IsTombstone rather than comparing HashList by hand.
type FileInfo struct {
	Version  int
	HashList []string
}

// IsTombstone reports whether fi represents a deletion.
func (fi FileInfo) IsTombstone() bool {
	return len(fi.HashList) == 1 && fi.HashList[0] == TombstoneHash
}

// Tombstone builds the FileInfo stored for a deletion at the given
// version.
func Tombstone(version int) FileInfo {
	return FileInfo{Version: version, HashList: []string{TombstoneHash}}
}

// Equal reports whether two FileInfos have the same version and
// element-wise identical hash lists; a tombstone therefore equals only
// another tombstone of the same version.
func (fi FileInfo) Equal(other FileInfo) bool {
	if fi.Version != other.Version {
		return false
	}
	if len(fi.HashList) != len(other.HashList) {
		return false
	}
	for i := range fi.HashList {
		if fi.HashList[i] != other.HashList[i] {
			return false
		}
	}
	return true
}

// HashListsEqual compares two hash lists for equality, used by the sync
// engine to decide whether a locally scanned file has actually changed.
func HashListsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

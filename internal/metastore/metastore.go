// Package metastore implements the server's versioned file info map:
// the single source of truth for which version of each file has been
// committed, and the conflict rule that decides whether a client's
// updatefile call is accepted.
//
// Unlike the block store, this map needs read-modify-write atomicity
// (accept iff version == current+1) and snapshot reads (getfileinfomap
// must see a consistent point-in-time view), so it is guarded by a
// single mutex rather than a lock-free map.
package metastore

import (
	"sync"

	"github.com/Yuol96/surfstore/internal/slog"
	"github.com/Yuol96/surfstore/internal/surfstore"
)

var l = slog.NewFacility("metastore", "server file info map")

// Store is the server's file info map.
type Store struct {
	mu      sync.Mutex
	files   map[string]surfstore.FileInfo
	updates int64
	rejects int64
}

// New creates an empty file info map.
func New() *Store {
	return &Store{files: make(map[string]surfstore.FileInfo)}
}

// GetFileInfoMap returns a snapshot copy of the full map. Mutating the
// returned map does not affect the store.
func (s *Store) GetFileInfoMap() map[string]surfstore.FileInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]surfstore.FileInfo, len(s.files))
	for name, fi := range s.files {
		hl := make([]string, len(fi.HashList))
		copy(hl, fi.HashList)
		out[name] = surfstore.FileInfo{Version: fi.Version, HashList: hl}
	}
	return out
}

// UpdateFile applies the accept-iff-next-version rule: the update is
// accepted (and the map mutated) iff version == current.Version + 1,
// where an absent file has current.Version == 0. Returns whether it was
// accepted.
func (s *Store) UpdateFile(name string, version int, hashList []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.files[name] // zero value has Version 0, correct for "unknown"
	if version != cur.Version+1 {
		s.rejects++
		l.Debugf("reject update %s: got version %d, want %d", name, version, cur.Version+1)
		return false
	}

	hl := make([]string, len(hashList))
	copy(hl, hashList)
	s.files[name] = surfstore.FileInfo{Version: version, HashList: hl}
	s.updates++
	l.Debugf("accept update %s -> version %d", name, version)
	return true
}

// Stats returns the number of accepted and rejected updates. The
// server's /metrics endpoint does not export them.
func (s *Store) Stats() (accepted, rejected int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates, s.rejects
}

// Package blockstore implements the server's content-addressed block
// store: a hash -> bytes map that blocks are only ever inserted into,
// never mutated or removed. Operations are small and in-memory, so
// getblock/putblock/hasblocks can all be lock-free reads/inserts against
// a single concurrent map, backed by a Bloom filter fast path for the
// membership check hasblocks performs for every hash a client is about
// to upload.
package blockstore

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/greatroar/blobloom"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/Yuol96/surfstore/internal/slog"
	"github.com/Yuol96/surfstore/internal/surfstore"
)

var l = slog.NewFacility("blockstore", "server block storage")

// bloomCapacity is the number of distinct blocks the Bloom filter is
// sized for before its false-positive rate starts climbing; the filter
// only ever shadows the map, so a too-low capacity costs throughput, not
// correctness (HasBlocks always falls through to the map on any "maybe").
const bloomCapacity = 1 << 20

// Store is the server's block store. The zero value is not usable; use
// New.
type Store struct {
	blocks *xsync.MapOf[string, []byte]
	bloom  *blobloom.Filter
}

// New creates an empty block store.
func New() *Store {
	return &Store{
		blocks: xsync.NewMapOf[string, []byte](),
		bloom: blobloom.NewOptimized(blobloom.Config{
			Capacity: bloomCapacity,
			FPRate:   1e-4,
		}),
	}
}

// HashBytes computes the canonical lowercase-hex SHA-256 digest of a
// block's content. This is the sole hash function the protocol uses; it
// is also what the chunker uses to fingerprint each chunk.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func bloomKey(hash string) uint64 {
	// The Bloom filter wants a pre-hashed uint64; the first 8 bytes of a
	// SHA-256 digest are already uniformly distributed, so decoding them
	// directly is cheaper than re-hashing.
	var buf [8]byte
	if len(hash) < 16 {
		sum := sha256.Sum256([]byte(hash))
		return binary.BigEndian.Uint64(sum[:8])
	}
	n, err := hex.Decode(buf[:], []byte(hash)[:16])
	if err != nil || n != 8 {
		// Malformed hash string (the RPC layer passes hashes through
		// without validating them). Fall back to hashing the string itself
		// so the filter still behaves, just without the fast decode.
		sum := sha256.Sum256([]byte(hash))
		return binary.BigEndian.Uint64(sum[:8])
	}
	return binary.BigEndian.Uint64(buf[:])
}

// PutBlock inserts bytes under its SHA-256 hash. Re-inserting identical
// bytes under the same hash is a no-op; the protocol never needs to
// store two different byte strings under one hash because the hash is
// the content.
func (s *Store) PutBlock(b []byte) string {
	hash := HashBytes(b)
	if _, loaded := s.blocks.LoadOrStore(hash, append([]byte(nil), b...)); !loaded {
		s.bloom.Add(bloomKey(hash))
		l.Debugf("put block %s (%d bytes)", hash, len(b))
	}
	return hash
}

// GetBlock returns the bytes stored under hash, or ErrUnknownBlock.
func (s *Store) GetBlock(hash string) ([]byte, error) {
	b, ok := s.blocks.Load(hash)
	if !ok {
		return nil, surfstore.ErrUnknownBlock
	}
	return b, nil
}

// HasBlocks returns the subset of hashes currently present in the
// store, preserving input order and duplicates.
func (s *Store) HasBlocks(hashes []string) []string {
	var present []string
	for _, h := range hashes {
		if !s.bloom.Has(bloomKey(h)) {
			// Definitely absent; skip the map probe entirely.
			continue
		}
		if _, ok := s.blocks.Load(h); ok {
			present = append(present, h)
		}
	}
	return present
}

// Len reports the number of distinct blocks stored. The server's
// /metrics endpoint does not export it.
func (s *Store) Len() int {
	return s.blocks.Size()
}

// Package scanner implements the client's chunker and base-directory
// scan: turning file content into the ordered block-hash lists the rest
// of the protocol operates on.
package scanner

import (
	"io"
	"os"

	"github.com/Yuol96/surfstore/internal/blockstore"
)

// BlockRef is one chunk of a file: its hash and its raw bytes.
type BlockRef struct {
	Hash string
	Data []byte
}

// Chunk reads path in fixed blockSize-byte chunks, in order, hashing
// each with SHA-256. The final chunk may be shorter than blockSize; an
// empty file yields an empty, non-nil slice.
func Chunk(path string, blockSize int) ([]BlockRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	refs := make([]BlockRef, 0)
	buf := make([]byte, blockSize)
	for {
		n, err := io.ReadFull(f, buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			refs = append(refs, BlockRef{Hash: blockstore.HashBytes(data), Data: data})
		}
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			// Final, short chunk: n > 0 was already appended above.
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return refs, nil
}

// HashList extracts just the ordered hashes from Chunk's output.
func HashList(refs []BlockRef) []string {
	hl := make([]string, len(refs))
	for i, r := range refs {
		hl[i] = r.Hash
	}
	return hl
}

// Package config centralizes the defaults both surfstore binaries fall
// back to when an optional argument isn't given.
package config

import "time"

const (
	// DefaultListenAddr is where surfstoreserver binds when its address
	// argument is empty.
	DefaultListenAddr = "localhost:8080"

	// PathPrefix is the URL prefix every RPC method is mounted under.
	PathPrefix = "/surfstore/"

	// DefaultBlockSize is the chunking granularity surfstoreclient uses
	// when its blocksize argument is omitted.
	DefaultBlockSize = 4096

	// IndexFileName is the reserved file name inside baseDir holding the
	// persisted local index; the scanner always skips it.
	IndexFileName = "index.txt"

	// RequestTimeout bounds every individual RPC the client makes.
	RequestTimeout = 30 * time.Second
)

package rpc

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// boolResponse is the wire shape for every RPC whose result is a single
// boolean (ping, putblock, updatefile).
type boolResponse struct {
	Success bool `json:"Success"`
}

// hashListBody is the wire shape for hasblocks, both request and
// response: an ordered list of hex hashes.
type hashListBody struct {
	Hashes []string `json:"Hashes"`
}

// updateFileRequest is the wire shape for updatefile.
type updateFileRequest struct {
	Name     string   `json:"Name"`
	Version  int      `json:"Version"`
	HashList []string `json:"HashList"`
}

const lz4ContentEncoding = "lz4"

// compressBlock lz4-frames b and returns the compressed bytes together
// with whether compression actually helped. Callers send the raw bytes
// with no Content-Encoding header when it didn't, since blocks are
// capped at the client's block size and not worth fighting over.
func compressBlock(b []byte) (out []byte, compressed bool) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return b, false
	}
	if err := zw.Close(); err != nil {
		return b, false
	}
	if buf.Len() >= len(b) {
		return b, false
	}
	return buf.Bytes(), true
}

// decompressBlock reverses compressBlock given whether the body carried
// the lz4 Content-Encoding.
func decompressBlock(r io.Reader, compressed bool) ([]byte, error) {
	if !compressed {
		return io.ReadAll(r)
	}
	return io.ReadAll(lz4.NewReader(r))
}

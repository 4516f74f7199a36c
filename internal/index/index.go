// Package index implements the client's persisted local index:
// index.txt inside baseDir, one record per line, the last fully
// reconciled (version, hashList) the client has observed for each file.
package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Yuol96/surfstore/internal/config"
	"github.com/Yuol96/surfstore/internal/slog"
	"github.com/Yuol96/surfstore/internal/surfstore"
)

var l = slog.NewFacility("index", "local index I/O")

// Load parses baseDir/index.txt. A missing file is not an error: it
// yields an empty index, since a brand-new client has nothing persisted
// yet. Malformed lines (fewer than 2 whitespace-separated tokens) are
// logged and skipped; the rest of the file is still used.
func Load(baseDir string) (map[string]surfstore.FileInfo, error) {
	path := filepath.Join(baseDir, config.IndexFileName)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return make(map[string]surfstore.FileInfo), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx := make(map[string]surfstore.FileInfo)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			l.Warnf("index.txt:%d: malformed line (need at least 2 fields), skipping: %q", lineNo, line)
			continue
		}

		name := fields[0]
		version, err := strconv.Atoi(fields[1])
		if err != nil {
			l.Warnf("index.txt:%d: invalid version %q, skipping", lineNo, fields[1])
			continue
		}
		hashList := append([]string(nil), fields[2:]...)
		idx[name] = surfstore.FileInfo{Version: version, HashList: hashList}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Write atomically replaces baseDir/index.txt with idx's contents:
// writes to a temp file in the same directory, then renames over the
// target, so a crash mid-write never leaves a half-written index.txt.
// Record order is not stable across calls.
func Write(baseDir string, idx map[string]surfstore.FileInfo) error {
	path := filepath.Join(baseDir, config.IndexFileName)
	tmp, err := os.CreateTemp(baseDir, ".index.txt.tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	w := bufio.NewWriter(tmp)
	for name, fi := range idx {
		if _, err := fmt.Fprintf(w, "%s %d", name, fi.Version); err != nil {
			tmp.Close()
			return err
		}
		for _, h := range fi.HashList {
			if _, err := fmt.Fprintf(w, " %s", h); err != nil {
				tmp.Close()
				return err
			}
		}
		if _, err := w.WriteString("\n"); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

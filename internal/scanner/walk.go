package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/Yuol96/surfstore/internal/config"
	"github.com/Yuol96/surfstore/internal/slog"
)

var l = slog.NewFacility("scanner", "directory scan and chunking")

// maxParallelHashers bounds how many files are chunked at once, sized
// off the machine rather than a fixed constant.
func maxParallelHashers() int64 {
	if n := runtime.GOMAXPROCS(0); n > 1 {
		return int64(n)
	}
	return 1
}

// ScanDir walks baseDir's direct children (subdirectories are skipped
// with a warning, and config.IndexFileName is never treated as data),
// chunking every other regular file under blockSize. It returns the
// file name -> hash list map and the hash -> bytes map needed to satisfy
// any subsequent putblock calls for blocks this scan discovered.
func ScanDir(baseDir string, blockSize int) (map[string][]string, map[string][]byte, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, nil, err
	}

	type fileResult struct {
		name string
		refs []BlockRef
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			l.Warnf("skipping subdirectory %s in base dir", e.Name())
			continue
		}
		if e.Name() == config.IndexFileName {
			continue
		}
		names = append(names, e.Name())
	}

	results := make([]fileResult, len(names))
	sem := semaphore.NewWeighted(maxParallelHashers())
	g, ctx := errgroup.WithContext(context.Background())

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			refs, err := Chunk(filepath.Join(baseDir, name), blockSize)
			if err != nil {
				// Disk I/O error on one file must not abort the others:
				// log it and drop this file from the scan.
				l.Warnf("chunking %s: %v", name, err)
				return nil
			}
			results[i] = fileResult{name: name, refs: refs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	hashLists := make(map[string][]string)
	blocks := make(map[string][]byte)
	for _, r := range results {
		if r.name == "" {
			continue // dropped due to a per-file I/O error above
		}
		hashLists[r.name] = HashList(r.refs)
		for _, ref := range r.refs {
			blocks[ref.Hash] = ref.Data
		}
	}
	return hashLists, blocks, nil
}

// Package syncengine implements the client's sync run: collect, pull,
// push (with per-file conflict retry), and persist, plus the upload
// sub-protocol that is the system's conflict-resolution core.
package syncengine

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Yuol96/surfstore/internal/index"
	"github.com/Yuol96/surfstore/internal/rpc"
	"github.com/Yuol96/surfstore/internal/scanner"
	"github.com/Yuol96/surfstore/internal/slog"
	"github.com/Yuol96/surfstore/internal/surfstore"
)

var l = slog.NewFacility("syncengine", "client sync orchestration")

// Stats summarizes one sync run, logged at Info once the run completes.
// It is not part of the protocol; it exists purely for operators.
type Stats struct {
	Downloaded int
	Uploaded   int
	Tombstoned int
	Conflicted int
}

// Sync runs one full client sync: load the local index, fetch the remote
// map, download remote-ahead files, rescan the directory, upload local
// changes (a rejected upload force-downloads the winner; the local edit
// is tried again on a later sync), and persist the index.
func Sync(ctx context.Context, client rpc.Client, baseDir string, blockSize int) (Stats, error) {
	var stats Stats

	// P0 — collect.
	localIndex, err := index.Load(baseDir)
	if err != nil {
		return stats, err
	}
	remoteIndex, err := client.GetFileInfoMap(ctx)
	if err != nil {
		return stats, err
	}

	// P1 — pull remote-ahead files down.
	for name, remote := range remoteIndex {
		local := localIndex[name] // zero value: version 0, absent
		if remote.Version <= local.Version {
			continue
		}
		if err := materialize(ctx, client, baseDir, name, remote); err != nil {
			l.Warnf("downloading %s: %v", name, err)
			continue
		}
		localIndex[name] = remote
		if remote.IsTombstone() {
			stats.Tombstoned++
		} else {
			stats.Downloaded++
		}
	}

	// P2 — push local changes up. Rescan after P1 so files P1 just wrote
	// are seen as already in sync and are not immediately re-uploaded.
	scanned, blocks, err := scanner.ScanDir(baseDir, blockSize)
	if err != nil {
		return stats, err
	}

	for name, hashList := range scanned {
		local := localIndex[name]
		if surfstore.HashListsEqual(hashList, local.HashList) {
			continue
		}
		result, err := upload(ctx, client, baseDir, blocks, name, local.Version+1, hashList)
		if err != nil {
			l.Warnf("uploading %s: %v", name, err)
			continue
		}
		localIndex[name] = result.fileInfo
		if result.conflicted {
			stats.Conflicted++
		} else {
			stats.Uploaded++
		}
	}

	for name, local := range localIndex {
		if _, stillPresent := scanned[name]; stillPresent {
			continue
		}
		if local.IsTombstone() {
			continue // already a tombstone, nothing to do
		}
		if remote, ok := remoteIndex[name]; ok && remote.IsTombstone() {
			// Guard against re-tombstoning a file this client never had:
			// it was created and deleted remotely between two syncs.
			continue
		}
		result, err := upload(ctx, client, baseDir, blocks, name, local.Version+1, []string{surfstore.TombstoneHash})
		if err != nil {
			l.Warnf("tombstoning %s: %v", name, err)
			continue
		}
		localIndex[name] = result.fileInfo
		if result.conflicted {
			stats.Conflicted++
		} else {
			stats.Tombstoned++
		}
	}

	// P3 — persist.
	if err := index.Write(baseDir, localIndex); err != nil {
		return stats, err
	}

	l.Infof("sync complete: %d downloaded, %d uploaded, %d tombstoned, %d conflicted",
		stats.Downloaded, stats.Uploaded, stats.Tombstoned, stats.Conflicted)
	return stats, nil
}

// materialize applies fi (known to be at least as new as what the
// client has) to disk: deletes the file for a tombstone, or fetches and
// writes every block in order otherwise. Used both by P1 and by the
// upload sub-protocol's conflict-resolution path.
func materialize(ctx context.Context, client rpc.Client, baseDir, name string, fi surfstore.FileInfo) error {
	path := filepath.Join(baseDir, name)
	if fi.IsTombstone() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, hash := range fi.HashList {
		block, err := client.GetBlock(ctx, hash)
		if err != nil {
			return err
		}
		if _, err := f.Write(block); err != nil {
			return err
		}
	}
	return nil
}

type uploadResult struct {
	fileInfo   surfstore.FileInfo
	conflicted bool
}

// upload is the conflict-resolution core: it pushes any
// blocks the server doesn't have yet, then attempts the version bump.
// On acceptance the caller's view of the file is now in sync. On
// rejection, the client's edit is discarded: it force-downloads the
// winner's content and index entry, and the local edit will re-manifest
// as a divergence (and a fresh upload attempt) on the next sync.
func upload(ctx context.Context, client rpc.Client, baseDir string, blocks map[string][]byte, name string, newVersion int, newHashList []string) (uploadResult, error) {
	isTombstone := surfstore.FileInfo{HashList: newHashList}.IsTombstone()
	if !isTombstone {
		present, err := client.HasBlocks(ctx, newHashList)
		if err != nil {
			return uploadResult{}, err
		}
		have := make(map[string]bool, len(present))
		for _, h := range present {
			have[h] = true
		}
		uploaded := make(map[string]bool)
		for _, h := range newHashList {
			if have[h] || uploaded[h] {
				continue
			}
			data, ok := blocks[h]
			if !ok {
				// Should not happen: newHashList came from this sync's
				// own scan, which also populated blocks.
				continue
			}
			if err := client.PutBlock(ctx, data); err != nil {
				return uploadResult{}, err
			}
			uploaded[h] = true
		}
	}

	ok, err := client.UpdateFile(ctx, name, newVersion, newHashList)
	if err != nil {
		return uploadResult{}, err
	}
	if ok {
		return uploadResult{fileInfo: surfstore.FileInfo{Version: newVersion, HashList: newHashList}}, nil
	}

	// Conflict: some other writer's update landed first. Force-download
	// the winner.
	remoteMap, err := client.GetFileInfoMap(ctx)
	if err != nil {
		return uploadResult{}, err
	}
	winner := remoteMap[name]
	if err := materialize(ctx, client, baseDir, name, winner); err != nil {
		return uploadResult{}, err
	}
	return uploadResult{fileInfo: winner, conflicted: true}, nil
}

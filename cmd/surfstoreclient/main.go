// Command surfstoreclient runs one sync between a local directory and a
// surfstoreserver. Each invocation is a single, complete sync: it exits
// after P3 persists the local index, leaving no background process.
package main

import (
	"context"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/Yuol96/surfstore/internal/config"
	"github.com/Yuol96/surfstore/internal/rpc"
	"github.com/Yuol96/surfstore/internal/slog"
	"github.com/Yuol96/surfstore/internal/syncengine"
)

var l = slog.New()

type cli struct {
	HostPort  string `arg:"" help:"Server address, host:port."`
	BaseDir   string `arg:"" help:"Local directory to sync."`
	BlockSize int    `arg:"" optional:"" default:"${defaultBlockSize}" help:"Chunk size in bytes."`
	Ping      bool   `help:"Only check connectivity to the server, then exit." name:"ping"`
}

func main() {
	var params cli
	kong.Parse(&params,
		kong.Name("surfstoreclient"),
		kong.Description("Syncs a local directory against a surfstore server."),
		kong.Vars{"defaultBlockSize": strconv.Itoa(config.DefaultBlockSize)},
	)

	ctx := context.Background()
	client := rpc.NewHTTPClient(params.HostPort)

	if params.Ping {
		if err := client.Ping(ctx); err != nil {
			l.Fatalf("ping %s: %v", params.HostPort, err)
		}
		l.Infof("server %s is reachable", params.HostPort)
		return
	}

	if params.BlockSize <= 0 {
		l.Fatalf("blocksize must be positive, got %d", params.BlockSize)
	}

	stats, err := syncengine.Sync(ctx, client, params.BaseDir, params.BlockSize)
	if err != nil {
		l.Fatalf("sync failed: %v", err)
	}
	l.Infof("sync done: %d downloaded, %d uploaded, %d tombstoned, %d conflicted",
		stats.Downloaded, stats.Uploaded, stats.Tombstoned, stats.Conflicted)
}

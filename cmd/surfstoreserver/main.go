// Command surfstoreserver runs the SurfStore block store and file info
// service. It holds all state in memory; a crash loses everything, by
// design — clients simply re-upload from scratch on their next sync.
package main

import (
	"github.com/alecthomas/kong"

	"github.com/Yuol96/surfstore/internal/blockstore"
	"github.com/Yuol96/surfstore/internal/config"
	"github.com/Yuol96/surfstore/internal/metastore"
	"github.com/Yuol96/surfstore/internal/rpc"
	"github.com/Yuol96/surfstore/internal/slog"
)

var l = slog.New()

type cli struct {
	Addr string `arg:"" optional:"" default:"localhost:8080" help:"Address to listen on, host:port."`
}

func main() {
	var params cli
	kong.Parse(&params,
		kong.Name("surfstoreserver"),
		kong.Description("Runs the SurfStore block store and file info service."),
	)

	addr := params.Addr
	if addr == "" {
		addr = config.DefaultListenAddr
	}

	blocks := blockstore.New()
	files := metastore.New()

	if err := rpc.ListenAndServe(addr, blocks, files); err != nil {
		l.Fatalf("server exited: %v", err)
	}
}

// Package rpc frames the surfstore protocol (ping, getblock, putblock,
// hasblocks, updatefile, getfileinfomap) as HTTP/JSON requests, routed
// with github.com/julienschmidt/httprouter. Any request/response framing
// would satisfy the protocol; this is simply a convenient one.
package rpc

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Yuol96/surfstore/internal/blockstore"
	"github.com/Yuol96/surfstore/internal/config"
	"github.com/Yuol96/surfstore/internal/metastore"
	"github.com/Yuol96/surfstore/internal/slog"
)

var l = slog.NewFacility("rpc", "RPC transport")

var pingCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "surfstore_server_ping_total",
	Help: "Number of ping RPCs served.",
})

// Server wires a blockstore.Store and a metastore.Store behind the
// surfstore RPC surface.
type Server struct {
	blocks *blockstore.Store
	files  *metastore.Store
	mux    http.Handler
}

// NewServer builds the HTTP handler for the RPC surface plus the
// ambient /metrics and /healthz endpoints.
func NewServer(blocks *blockstore.Store, files *metastore.Store) *Server {
	s := &Server{blocks: blocks, files: files}

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, config.PathPrefix+"ping", s.handlePing)
	router.HandlerFunc(http.MethodGet, config.PathPrefix+"getblock", s.handleGetBlock)
	router.HandlerFunc(http.MethodPost, config.PathPrefix+"putblock", s.handlePutBlock)
	router.HandlerFunc(http.MethodPost, config.PathPrefix+"hasblocks", s.handleHasBlocks)
	router.HandlerFunc(http.MethodGet, config.PathPrefix+"getfileinfomap", s.handleGetFileInfoMap)
	router.HandlerFunc(http.MethodPost, config.PathPrefix+"updatefile", s.handleUpdateFile)

	mux := http.NewServeMux()
	mux.Handle(config.PathPrefix, router)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.handleHealthz)

	s.mux = mux
	return s
}

// ServeHTTP lets Server be passed straight to http.ListenAndServe.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func sendJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	pingCount.Inc()
	sendJSON(w, boolResponse{Success: true})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("hash")
	b, err := s.blocks.GetBlock(hash)
	if err != nil {
		l.Warnf("getblock %s: %v", hash, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	body, compressed := compressBlock(b)
	if compressed {
		w.Header().Set("Content-Encoding", lz4ContentEncoding)
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(body)
}

func (s *Server) handlePutBlock(w http.ResponseWriter, r *http.Request) {
	compressed := r.Header.Get("Content-Encoding") == lz4ContentEncoding
	b, err := decompressBlock(r.Body, compressed)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.blocks.PutBlock(b)
	sendJSON(w, boolResponse{Success: true})
}

func (s *Server) handleHasBlocks(w http.ResponseWriter, r *http.Request) {
	var req hashListBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	present := s.blocks.HasBlocks(req.Hashes)
	sendJSON(w, hashListBody{Hashes: present})
}

func (s *Server) handleGetFileInfoMap(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, s.files.GetFileInfoMap())
}

func (s *Server) handleUpdateFile(w http.ResponseWriter, r *http.Request) {
	var req updateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ok := s.files.UpdateFile(req.Name, req.Version, req.HashList)
	sendJSON(w, boolResponse{Success: ok})
}

// ListenAndServe starts the server on addr; it blocks until the
// listener fails.
func ListenAndServe(addr string, blocks *blockstore.Store, files *metastore.Store) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      NewServer(blocks, files),
		ReadTimeout:  config.RequestTimeout,
		WriteTimeout: config.RequestTimeout,
	}
	l.Infof("listening on %s", addr)
	return srv.ListenAndServe()
}

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Yuol96/surfstore/internal/config"
	"github.com/Yuol96/surfstore/internal/surfstore"
)

// Client is what the sync engine needs from a surfstore server. It is
// the seam the sync engine is tested against; the HTTP implementation
// below is one realization of it.
type Client interface {
	Ping(ctx context.Context) error
	GetBlock(ctx context.Context, hash string) ([]byte, error)
	PutBlock(ctx context.Context, block []byte) error
	HasBlocks(ctx context.Context, hashes []string) ([]string, error)
	GetFileInfoMap(ctx context.Context) (map[string]surfstore.FileInfo, error)
	UpdateFile(ctx context.Context, name string, version int, hashList []string) (bool, error)
}

// HTTPClient is the default Client, speaking the JSON-over-HTTP framing
// implemented by Server.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPClient builds a client against a server listening on hostPort
// (e.g. "localhost:8080").
func NewHTTPClient(hostPort string) *HTTPClient {
	return &HTTPClient{
		baseURL: "http://" + hostPort + config.PathPrefix,
		hc:      &http.Client{Timeout: config.RequestTimeout},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("surfstore rpc transport error: %w", err)
	}
	return resp, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "ping", nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var out boolResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("surfstore rpc: decoding ping response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("surfstore rpc: ping returned false")
	}
	return nil
}

func (c *HTTPClient) GetBlock(ctx context.Context, hash string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "getblock?hash="+url.QueryEscape(hash), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, surfstore.ErrUnknownBlock
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("surfstore rpc: getblock: server returned %s", resp.Status)
	}
	compressed := resp.Header.Get("Content-Encoding") == lz4ContentEncoding
	return decompressBlock(resp.Body, compressed)
}

func (c *HTTPClient) PutBlock(ctx context.Context, block []byte) error {
	body, compressed := compressBlock(block)
	headers := map[string]string{"Content-Type": "application/octet-stream"}
	if compressed {
		headers["Content-Encoding"] = lz4ContentEncoding
	}
	resp, err := c.do(ctx, http.MethodPost, "putblock", body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var out boolResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("surfstore rpc: decoding putblock response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("surfstore rpc: putblock rejected")
	}
	return nil
}

func (c *HTTPClient) HasBlocks(ctx context.Context, hashes []string) ([]string, error) {
	reqBody, err := json.Marshal(hashListBody{Hashes: hashes})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "hasblocks", reqBody, map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out hashListBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("surfstore rpc: decoding hasblocks response: %w", err)
	}
	return out.Hashes, nil
}

func (c *HTTPClient) GetFileInfoMap(ctx context.Context) (map[string]surfstore.FileInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, "getfileinfomap", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out map[string]surfstore.FileInfo
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("surfstore rpc: decoding getfileinfomap response: %w", err)
	}
	return out, nil
}

func (c *HTTPClient) UpdateFile(ctx context.Context, name string, version int, hashList []string) (bool, error) {
	reqBody, err := json.Marshal(updateFileRequest{Name: name, Version: version, HashList: hashList})
	if err != nil {
		return false, err
	}
	resp, err := c.do(ctx, http.MethodPost, "updatefile", reqBody, map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	var out boolResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("surfstore rpc: decoding updatefile response: %w", err)
	}
	return out.Success, nil
}

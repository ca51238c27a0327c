// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

// Package pinecone implements the remote edge vector-index backend.
// Similarity search and metadata filtering run server-side; this package
// translates the typed contract into the service's wire format.
//
// The transport is injected as a Doer so tests and alternative HTTP stacks
// plug in without a second backend type.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vecgate-dev/vecgate/internal/store"
)

// upsertChunkSize is the service's documented per-request vector limit.
const upsertChunkSize = 100

const defaultTimeout = 10 * time.Second

// Doer executes one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Compile-time interface check.
var _ store.Backend = (*Store)(nil)

// Store is the remote backend. Safe for concurrent use.
type Store struct {
	endpoint  string
	apiKey    string
	namespace string
	timeout   time.Duration
	client    Doer

	mu   sync.Mutex
	dims int
}

// Option configures a Store.
type Option func(*Store)

// WithDoer replaces the HTTP transport. The default is an http.Client with
// the configured timeout.
func WithDoer(d Doer) Option {
	return func(s *Store) { s.client = d }
}

// New creates a remote backend from cfg. It performs no network I/O; the
// first Insert or Search does.
func New(cfg *store.Config) *Store {
	timeout := cfg.Remote.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	s := &Store{
		endpoint:  strings.TrimRight(cfg.Remote.Endpoint, "/"),
		apiKey:    cfg.Remote.APIKey,
		namespace: cfg.Remote.Namespace,
		timeout:   timeout,
		dims:      cfg.Dimensions,
	}
	s.client = &http.Client{Timeout: timeout}
	return s
}

func (s *Store) Name() string { return "remote" }

// Available reports whether the endpoint and API key are both configured.
// It never touches the network, so the selector can probe it cheaply.
func (s *Store) Available() bool {
	return s.endpoint != "" && s.apiKey != ""
}

func (s *Store) Close() error { return nil }

type wireVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []wireVector `json:"vectors"`
	Namespace string       `json:"namespace,omitempty"`
}

type upsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

type queryRequest struct {
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	IncludeMetadata bool           `json:"includeMetadata"`
	Filter          map[string]any `json:"filter,omitempty"`
	Namespace       string         `json:"namespace,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata,omitempty"`
	} `json:"matches"`
}

// Insert upserts the batch, chunked to the service's per-request limit,
// chunks in flight concurrently. The returned mutation ID is the server's
// request ID when it sends one.
func (s *Store) Insert(ctx context.Context, records []store.VectorRecord) (*store.InsertResult, error) {
	if !s.Available() {
		return nil, fmt.Errorf("%w: remote endpoint or API key not configured", store.ErrBackendUnavailable)
	}

	s.mu.Lock()
	dims, err := store.PrepareRecords(records, s.dims)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.dims = dims
	s.mu.Unlock()

	vectors := make([]wireVector, len(records))
	for i, rec := range records {
		vectors[i] = wireVector{ID: rec.ID, Values: rec.Values, Metadata: rec.Metadata}
	}

	var (
		tokenMu  sync.Mutex
		mutation string
	)

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(vectors); start += upsertChunkSize {
		chunk := vectors[start:min(start+upsertChunkSize, len(vectors))]
		g.Go(func() error {
			var out upsertResponse
			requestID, err := s.do(gctx, "/vectors/upsert", upsertRequest{Vectors: chunk, Namespace: s.namespace}, &out)
			if err != nil {
				return err
			}
			tokenMu.Lock()
			if mutation == "" && requestID != "" {
				mutation = requestID
			}
			tokenMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if mutation == "" {
		mutation = uuid.NewString()
	}
	return &store.InsertResult{MutationID: mutation}, nil
}

// Search issues one query with the translated filter and full metadata
// return. The MinScore threshold is applied client-side because the service
// has no native score cutoff.
func (s *Store) Search(ctx context.Context, query []float32, opts store.SearchOptions) (*store.SearchResponse, error) {
	if !s.Available() {
		return nil, fmt.Errorf("%w: remote endpoint or API key not configured", store.ErrBackendUnavailable)
	}

	s.mu.Lock()
	dims := s.dims
	s.mu.Unlock()
	if dims > 0 && len(query) != dims {
		return nil, fmt.Errorf("%w: query has %d values, index dimensionality is %d",
			store.ErrDimensionMismatch, len(query), dims)
	}

	req := queryRequest{
		Vector:          query,
		TopK:            opts.EffectiveTopK(),
		IncludeMetadata: true,
		Filter:          translateFilter(opts.Filter),
		Namespace:       s.namespace,
	}

	var out queryResponse
	if _, err := s.do(ctx, "/query", req, &out); err != nil {
		return nil, err
	}

	results := make([]store.SearchResult, 0, len(out.Matches))
	for _, m := range out.Matches {
		if opts.MinScore > 0 && m.Score < opts.MinScore {
			continue
		}
		results = append(results, store.SearchResult{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}

	return &store.SearchResponse{Results: results}, nil
}

// translateFilter maps the typed filter into the service's expression
// syntax: equality as $eq, the numeric range as $gte/$lte on one field.
func translateFilter(f *store.SearchFilter) map[string]any {
	if f == nil {
		return nil
	}

	expr := make(map[string]any, len(f.Equals)+1)
	for field, value := range f.Equals {
		expr[field] = map[string]any{"$eq": value}
	}

	if f.Range != nil {
		bounds := map[string]any{}
		if f.Range.Min != nil {
			bounds["$gte"] = *f.Range.Min
		}
		if f.Range.Max != nil {
			bounds["$lte"] = *f.Range.Max
		}
		if len(bounds) > 0 {
			expr[f.Range.Field] = bounds
		}
	}

	if len(expr) == 0 {
		return nil
	}
	return expr
}

// do sends one JSON request and decodes the response body into out when out
// is non-nil. The returned string is the server's request ID header, if any.
// Timeouts surface as store.ErrTimeout, all other transport and status
// failures as store.ErrRemoteRequest.
func (s *Store) do(ctx context.Context, path string, payload, out any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", store.ErrRemoteRequest, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", store.ErrRemoteRequest, err)
	}
	req.Header.Set("Api-Key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w after %s: %v", store.ErrTimeout, s.timeout, err)
		}
		return "", fmt.Errorf("%w: %s: %v", store.ErrRemoteRequest, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	requestID := resp.Header.Get("X-Request-Id")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: %s returned HTTP %d: %s",
			store.ErrRemoteRequest, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return "", fmt.Errorf("%w: decoding %s response: %v", store.ErrRemoteRequest, path, err)
		}
	}

	return requestID, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

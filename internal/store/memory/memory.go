// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

// Package memory implements the process-local, ephemeral vector backend.
// It is the fallback and test path; search is a brute-force scan, O(N) per
// query, which is acceptable at the scale this backend is meant for.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vecgate-dev/vecgate/internal/store"
	"github.com/vecgate-dev/vecgate/internal/vector"
)

// Store is the in-memory backend. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	records   map[string]store.VectorRecord
	order     []string // first-insert order, keeps result ties stable
	dims      int
	mutations uint64
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithDimensions fixes the dimensionality up front instead of letting the
// first insert establish it.
func WithDimensions(dims int) Option {
	return func(s *Store) { s.dims = dims }
}

// WithSeed pre-populates example records so the insert/search contract can
// be exercised without data. Seeds go through the normal upsert path and
// establish dimensionality like any insert; this is a dev/demo convenience,
// not a correctness feature.
func WithSeed(records []store.VectorRecord) Option {
	return func(s *Store) {
		if _, err := s.Insert(context.Background(), records); err != nil {
			panic(fmt.Sprintf("seeding memory store: %v", err))
		}
	}
}

// New creates an empty in-memory backend.
func New(opts ...Option) *Store {
	s := &Store{
		records: make(map[string]store.VectorRecord),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Name() string { return "memory" }

// Available always holds; the in-memory backend needs no configuration.
func (s *Store) Available() bool { return true }

func (s *Store) Close() error { return nil }

// Insert upserts the batch under one lock acquisition. Last write wins on
// duplicate IDs; the returned mutation ID is a synthetic counter token.
func (s *Store) Insert(_ context.Context, records []store.VectorRecord) (*store.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dims, err := store.PrepareRecords(records, s.dims)
	if err != nil {
		return nil, err
	}
	s.dims = dims

	for _, rec := range records {
		rec.Metadata = store.StampCreatedAt(rec.Metadata, s.now())
		if _, exists := s.records[rec.ID]; !exists {
			s.order = append(s.order, rec.ID)
		}
		s.records[rec.ID] = rec
	}

	s.mutations++
	return &store.InsertResult{MutationID: fmt.Sprintf("mem-%d", s.mutations)}, nil
}

// Search scans every stored record, scores it against the query, and ranks
// the survivors.
func (s *Store) Search(_ context.Context, query []float32, opts store.SearchOptions) (*store.SearchResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dims > 0 && len(query) != s.dims {
		return nil, fmt.Errorf("%w: query has %d values, store dimensionality is %d",
			store.ErrDimensionMismatch, len(query), s.dims)
	}

	results := make([]store.SearchResult, 0, len(s.order))
	for _, id := range s.order {
		rec := s.records[id]
		if !opts.Filter.Matches(rec.Metadata) {
			continue
		}
		score, err := vector.CosineSimilarity(query, rec.Values)
		if err != nil {
			return nil, fmt.Errorf("%w: scoring record %q: %v", store.ErrDimensionMismatch, id, err)
		}
		results = append(results, store.SearchResult{ID: id, Score: score, Metadata: rec.Metadata})
	}

	return &store.SearchResponse{Results: store.Rank(results, opts)}, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

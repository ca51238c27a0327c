// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

// Package store defines the uniform insert/search contract over swappable
// vector-storage backends and the facade application code calls.
package store

import (
	"context"
	"fmt"
)

// Backend is one concrete storage medium implementing the vector contract.
// All implementations must be safe for concurrent use.
type Backend interface {
	// Insert upserts a batch of records (last-write-wins by ID) and returns
	// an opaque mutation acknowledgment.
	Insert(ctx context.Context, records []VectorRecord) (*InsertResult, error)

	// Search returns up to top-k records ranked by descending cosine
	// similarity to the query vector, subject to the options' filter.
	Search(ctx context.Context, query []float32, opts SearchOptions) (*SearchResponse, error)

	// Available reports whether the backend's required configuration is
	// present. It must be cheap, synchronous, and perform no I/O.
	Available() bool

	// Name identifies the backend in errors and logs.
	Name() string

	Close() error
}

// Store is the facade application code calls. The backend is chosen once at
// construction and never swapped; Insert and Search are pure delegation plus
// backend attribution on errors.
type Store struct {
	backend Backend
}

// NewStore wraps an already-selected backend. Most callers use New, which
// runs the selection policy first.
func NewStore(b Backend) *Store {
	return &Store{backend: b}
}

// BackendName returns the name of the active backend.
func (s *Store) BackendName() string {
	return s.backend.Name()
}

func (s *Store) Insert(ctx context.Context, records []VectorRecord) (*InsertResult, error) {
	res, err := s.backend.Insert(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("backend %s: insert: %w", s.backend.Name(), err)
	}
	return res, nil
}

func (s *Store) Search(ctx context.Context, query []float32, opts SearchOptions) (*SearchResponse, error) {
	res, err := s.backend.Search(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("backend %s: search: %w", s.backend.Name(), err)
	}
	return res, nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

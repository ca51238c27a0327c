// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vecgate-dev/vecgate/internal/store"
)

func f64(v float64) *float64 { return &v }

func TestSearchFilter_NilMatchesEverything(t *testing.T) {
	var f *store.SearchFilter
	assert.True(t, f.Matches(map[string]any{"category": "fuel"}))
	assert.True(t, f.Matches(nil))
}

func TestSearchFilter_Equality(t *testing.T) {
	f := &store.SearchFilter{Equals: map[string]string{"category": "fuel"}}

	assert.True(t, f.Matches(map[string]any{"category": "fuel", "amount": 35.0}))
	assert.False(t, f.Matches(map[string]any{"category": "food"}))
	assert.False(t, f.Matches(map[string]any{}))
	// Non-string values never satisfy an equality constraint.
	assert.False(t, f.Matches(map[string]any{"category": 42}))
}

func TestSearchFilter_NumericRange(t *testing.T) {
	f := &store.SearchFilter{Range: &store.NumericRange{Field: "amount", Min: f64(10), Max: f64(50)}}

	assert.True(t, f.Matches(map[string]any{"amount": 35.0}))
	assert.True(t, f.Matches(map[string]any{"amount": 10}))
	assert.True(t, f.Matches(map[string]any{"amount": int64(50)}))
	assert.False(t, f.Matches(map[string]any{"amount": 9.99}))
	assert.False(t, f.Matches(map[string]any{"amount": 50.01}))
	assert.False(t, f.Matches(map[string]any{"amount": "35"}))
	assert.False(t, f.Matches(map[string]any{}))
}

func TestSearchFilter_OpenRangeBounds(t *testing.T) {
	minOnly := &store.SearchFilter{Range: &store.NumericRange{Field: "amount", Min: f64(100)}}
	assert.True(t, minOnly.Matches(map[string]any{"amount": 1000.0}))
	assert.False(t, minOnly.Matches(map[string]any{"amount": 99.0}))

	maxOnly := &store.SearchFilter{Range: &store.NumericRange{Field: "amount", Max: f64(100)}}
	assert.True(t, maxOnly.Matches(map[string]any{"amount": -5.0}))
	assert.False(t, maxOnly.Matches(map[string]any{"amount": 101.0}))
}

func TestSearchOptions_EffectiveTopK(t *testing.T) {
	assert.Equal(t, store.DefaultTopK, store.SearchOptions{}.EffectiveTopK())
	assert.Equal(t, store.DefaultTopK, store.SearchOptions{TopK: -3}.EffectiveTopK())
	assert.Equal(t, 7, store.SearchOptions{TopK: 7}.EffectiveTopK())
	assert.Equal(t, store.MaxTopK, store.SearchOptions{TopK: 500}.EffectiveTopK())
}

func TestRank_OrdersDescendingWithStableTies(t *testing.T) {
	results := []store.SearchResult{
		{ID: "low", Score: 0.1},
		{ID: "tie-first", Score: 0.5},
		{ID: "high", Score: 0.9},
		{ID: "tie-second", Score: 0.5},
	}

	ranked := store.Rank(results, store.SearchOptions{TopK: 10})
	require.Len(t, ranked, 4)
	assert.Equal(t, "high", ranked[0].ID)
	assert.Equal(t, "tie-first", ranked[1].ID)
	assert.Equal(t, "tie-second", ranked[2].ID)
	assert.Equal(t, "low", ranked[3].ID)
}

func TestRank_MinScoreAndTruncation(t *testing.T) {
	results := []store.SearchResult{
		{ID: "a", Score: 0.95},
		{ID: "b", Score: 0.8},
		{ID: "c", Score: 0.4},
		{ID: "d", Score: -0.2},
	}

	ranked := store.Rank(results, store.SearchOptions{TopK: 2, MinScore: 0.5})
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].ID)
	assert.Equal(t, "b", ranked[1].ID)
}

func TestRank_ZeroMinScoreKeepsNonPositiveScores(t *testing.T) {
	results := []store.SearchResult{
		{ID: "a", Score: 1.0},
		{ID: "b", Score: 0.0},
		{ID: "c", Score: -0.5},
	}

	ranked := store.Rank(results, store.SearchOptions{TopK: 3})
	assert.Len(t, ranked, 3)
}

func TestPrepareRecords_AssignsIDsAndEstablishesDims(t *testing.T) {
	records := []store.VectorRecord{
		{Values: []float32{1, 0, 0}},
		{ID: "named", Values: []float32{0, 1, 0}},
	}

	dims, err := store.PrepareRecords(records, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, dims)
	assert.NotEmpty(t, records[0].ID)
	assert.Equal(t, "named", records[1].ID)
}

func TestPrepareRecords_DimensionMismatch(t *testing.T) {
	records := []store.VectorRecord{{ID: "r1", Values: make([]float32, 10)}}

	_, err := store.PrepareRecords(records, 1536)
	assert.ErrorIs(t, err, store.ErrDimensionMismatch)
}

func TestPrepareRecords_MixedBatchRejected(t *testing.T) {
	records := []store.VectorRecord{
		{ID: "a", Values: []float32{1, 2}},
		{ID: "b", Values: []float32{1, 2, 3}},
	}

	_, err := store.PrepareRecords(records, 0)
	assert.ErrorIs(t, err, store.ErrDimensionMismatch)
}

func TestPrepareRecords_EmptyVectorRejected(t *testing.T) {
	_, err := store.PrepareRecords([]store.VectorRecord{{ID: "a"}}, 0)
	assert.ErrorIs(t, err, store.ErrDimensionMismatch)
}

func TestStampCreatedAt(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	stamped := store.StampCreatedAt(map[string]any{"category": "fuel"}, now)
	assert.Equal(t, "2026-03-14T09:26:53Z", stamped[store.CreatedAtField])
	assert.Equal(t, "fuel", stamped["category"])

	// An existing timestamp is preserved, and the input map is not mutated.
	orig := map[string]any{store.CreatedAtField: "2020-01-01T00:00:00Z"}
	stamped = store.StampCreatedAt(orig, now)
	assert.Equal(t, "2020-01-01T00:00:00Z", stamped[store.CreatedAtField])

	empty := map[string]any{}
	_ = store.StampCreatedAt(empty, now)
	assert.Empty(t, empty)
}

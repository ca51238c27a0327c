// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package store

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// CreatedAtField is the metadata field backends stamp at insert when the
// caller did not provide one.
const CreatedAtField = "created_at"

const (
	// DefaultTopK is the number of results a search returns when the caller
	// does not ask for a specific count.
	DefaultTopK = 5

	// MaxTopK caps how many results a single search may return.
	MaxTopK = 20
)

// VectorRecord is one embedding vector plus its caller-supplied metadata.
// Metadata values are restricted by convention to string, number, bool, or
// nil; the store treats them as opaque beyond filter evaluation.
type VectorRecord struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NumericRange constrains one numeric metadata field. Nil bounds are open.
type NumericRange struct {
	Field string   `json:"field"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

// SearchFilter narrows which records a search may return. A nil filter is
// unconstrained.
type SearchFilter struct {
	Equals map[string]string `json:"equals,omitempty"`
	Range  *NumericRange     `json:"range,omitempty"`
}

// Matches reports whether meta satisfies every constraint in the filter.
func (f *SearchFilter) Matches(meta map[string]any) bool {
	if f == nil {
		return true
	}

	for field, want := range f.Equals {
		got, ok := meta[field].(string)
		if !ok || got != want {
			return false
		}
	}

	if f.Range != nil {
		n, ok := numericValue(meta[f.Range.Field])
		if !ok {
			return false
		}
		if f.Range.Min != nil && n < *f.Range.Min {
			return false
		}
		if f.Range.Max != nil && n > *f.Range.Max {
			return false
		}
	}

	return true
}

// SearchOptions control one search call.
type SearchOptions struct {
	// TopK is the maximum number of results; 0 means DefaultTopK, values
	// outside 1..MaxTopK are clamped.
	TopK int

	// MinScore drops results scoring below it when > 0. Zero disables the
	// threshold so orthogonal (score 0) and negative matches still return.
	MinScore float64

	Filter *SearchFilter
}

// EffectiveTopK returns TopK clamped to 1..MaxTopK, defaulting to DefaultTopK.
func (o SearchOptions) EffectiveTopK() int {
	k := o.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	if k > MaxTopK {
		k = MaxTopK
	}
	return k
}

// SearchResult is one ranked match.
type SearchResult struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchResponse is the uniform reply of every backend's Search. Skipped
// counts stored rows dropped because their vector was malformed or had the
// wrong length; it is reported rather than silently swallowed.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Skipped int            `json:"skipped,omitempty"`
}

// InsertResult acknowledges an insert batch. MutationID is opaque and must
// not be parsed by callers.
type InsertResult struct {
	MutationID string `json:"mutationId"`
}

// Rank sorts results by descending score keeping ties in their existing
// order, drops those under MinScore, and truncates to the effective top-k.
// In-process backends share it so ordering semantics stay identical.
func Rank(results []SearchResult, opts SearchOptions) []SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if opts.MinScore > 0 {
		kept := results[:0]
		for _, r := range results {
			if r.Score >= opts.MinScore {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	if k := opts.EffectiveTopK(); len(results) > k {
		results = results[:k]
	}
	return results
}

// PrepareRecords assigns IDs to records that lack one and enforces a single
// dimensionality across the batch. established is the backend's current
// dimensionality, 0 if none has been set yet; the (possibly newly
// established) dimensionality is returned. Backends call this before any
// I/O so a bad batch never partially lands.
func PrepareRecords(records []VectorRecord, established int) (int, error) {
	dims := established
	for i := range records {
		if len(records[i].Values) == 0 {
			return 0, errDimension(records[i].ID, 0, dims)
		}
		if dims == 0 {
			dims = len(records[i].Values)
		} else if len(records[i].Values) != dims {
			return 0, errDimension(records[i].ID, len(records[i].Values), dims)
		}
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
	}
	return dims, nil
}

// StampCreatedAt returns a copy of meta with CreatedAtField set if absent.
// Copying keeps backends from mutating or aliasing the caller's map.
func StampCreatedAt(meta map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	if _, ok := out[CreatedAtField]; !ok {
		out[CreatedAtField] = now.UTC().Format(time.RFC3339)
	}
	return out
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	default:
		return 0, false
	}
}

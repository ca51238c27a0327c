// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

// Package vector provides the similarity math and the on-disk float32 codec
// shared by the in-process storage backends.
package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDimensionMismatch indicates two vectors of unequal length were compared.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrMalformed indicates a stored vector blob could not be decoded.
	ErrMalformed = errors.New("malformed vector blob")
)

// CosineSimilarity returns the cosine similarity of a and b:
// dot(a,b) / (‖a‖·‖b‖). The result is in [-1, 1] for arbitrary vectors.
// If either vector has zero magnitude the result is 0; this is a documented
// degenerate case, not an error. The function is pure and safe for
// concurrent use.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: empty vectors", ErrDimensionMismatch)
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// EncodeFloat32 serializes v as little-endian float32 values, 4 bytes each.
// The format matches what sqlite-vec's SerializeFloat32 produces, so blobs
// written by either encoder decode identically.
func EncodeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeFloat32 deserializes a little-endian float32 blob. A blob whose
// length is not a multiple of 4 is malformed.
func DecodeFloat32(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformed, len(blob))
	}

	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v, nil
}

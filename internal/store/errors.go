// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for store operations, checked with errors.Is().
var (
	// ErrDimensionMismatch indicates a vector's length disagrees with the
	// backend's established dimensionality. Always detected before any I/O.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrBackendUnavailable indicates a backend's required configuration or
	// credentials are missing. Detected synchronously at selection time,
	// never via a failed request.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrBackendUnsupported indicates an unknown backend name or mode.
	ErrBackendUnsupported = errors.New("unsupported backend")

	// ErrRemoteRequest indicates the remote backend sent a request that
	// failed: non-2xx status, malformed body, or connection error.
	ErrRemoteRequest = errors.New("remote request failed")

	// ErrTimeout is the deadline-exceeded variant of ErrRemoteRequest;
	// errors.Is(err, ErrRemoteRequest) also holds for it.
	ErrTimeout = fmt.Errorf("%w: timeout", ErrRemoteRequest)

	// ErrMalformedVector indicates a stored vector could not be decoded.
	// Search skips the affected row and counts it instead of failing.
	ErrMalformedVector = errors.New("malformed stored vector")
)

func errDimension(id string, got, want int) error {
	if got == 0 {
		return fmt.Errorf("%w: record %q has an empty vector", ErrDimensionMismatch, id)
	}
	return fmt.Errorf("%w: record %q has %d values, store dimensionality is %d",
		ErrDimensionMismatch, id, got, want)
}

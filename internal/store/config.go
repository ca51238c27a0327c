// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package store

import "time"

// Mode selects how the backend is chosen.
type Mode string

const (
	// ModeAuto probes the remote backend first and falls back to the
	// embedded or in-memory backend when it is unavailable.
	ModeAuto Mode = "auto"

	ModeMemory   Mode = "memory"
	ModeEmbedded Mode = "embedded"
	ModeRemote   Mode = "remote"
)

// Config is the explicit configuration value passed into the selector.
// There is no ambient global; callers construct one (usually from
// internal/config) and hand it to New.
type Config struct {
	Mode Mode

	// Dimensions fixes the vector dimensionality up front when > 0
	// (1536 for the usual embedding models). When 0 the first insert
	// establishes it.
	Dimensions int

	Embedded EmbeddedConfig
	Remote   RemoteConfig
}

// EmbeddedConfig locates the single-file embedded store. Parent directories
// are created on first use.
type EmbeddedConfig struct {
	Path string
}

// RemoteConfig holds the edge vector-index service credentials. The remote
// backend reports available only when Endpoint and APIKey are both set.
type RemoteConfig struct {
	Endpoint  string
	APIKey    string
	Namespace string
	Timeout   time.Duration
}

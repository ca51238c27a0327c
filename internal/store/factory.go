// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package store

import (
	"fmt"
	"log/slog"
	"sync"
)

// Factory creates a backend and probes its availability without performing
// I/O. Backend packages register one from init().
type Factory struct {
	New       func(cfg *Config) (Backend, error)
	Available func(cfg *Config) bool
}

var (
	factories   = map[Mode]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers the factory for a backend mode. Goroutine-safe;
// backend packages call it from init().
func RegisterBackend(mode Mode, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[mode] = f
}

// autoOrder is the fallback chain for ModeAuto: remote first, then the
// durable embedded store, then the ephemeral in-memory store.
var autoOrder = []Mode{ModeRemote, ModeEmbedded, ModeMemory}

// New runs the selection policy once and returns the facade. A forced mode
// fails fast when its backend is unavailable; only ModeAuto falls back, with
// a warning naming the reason.
func New(cfg *Config) (*Store, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeAuto
	}

	if mode != ModeAuto {
		backend, err := build(mode, cfg)
		if err != nil {
			return nil, err
		}
		return NewStore(backend), nil
	}

	for _, candidate := range autoOrder {
		f, ok := lookup(candidate)
		if !ok {
			continue
		}
		if !f.Available(cfg) {
			slog.Warn("backend unavailable, trying next", "backend", candidate)
			continue
		}
		backend, err := f.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s backend: %w", candidate, err)
		}
		slog.Info("selected storage backend", "backend", backend.Name())
		return NewStore(backend), nil
	}

	return nil, fmt.Errorf("%w: no backend available in auto mode", ErrBackendUnavailable)
}

func build(mode Mode, cfg *Config) (Backend, error) {
	f, ok := lookup(mode)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendUnsupported, mode)
	}
	if !f.Available(cfg) {
		return nil, fmt.Errorf("%w: %s backend forced but not configured", ErrBackendUnavailable, mode)
	}
	backend, err := f.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s backend: %w", mode, err)
	}
	return backend, nil
}

func lookup(mode Mode) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[mode]
	return f, ok
}

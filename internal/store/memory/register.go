// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package memory

import "github.com/vecgate-dev/vecgate/internal/store"

func init() {
	store.RegisterBackend(store.ModeMemory, store.Factory{
		New: func(cfg *store.Config) (store.Backend, error) {
			return New(WithDimensions(cfg.Dimensions)), nil
		},
		// The in-memory backend has no configuration to miss.
		Available: func(*store.Config) bool { return true },
	})
}

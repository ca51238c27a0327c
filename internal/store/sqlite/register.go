// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package sqlite

import "github.com/vecgate-dev/vecgate/internal/store"

func init() {
	store.RegisterBackend(store.ModeEmbedded, store.Factory{
		New: func(cfg *store.Config) (store.Backend, error) {
			return New(cfg.Embedded.Path, cfg.Dimensions)
		},
		Available: func(cfg *store.Config) bool {
			return cfg.Embedded.Path != ""
		},
	})
}

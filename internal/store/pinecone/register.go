// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package pinecone

import "github.com/vecgate-dev/vecgate/internal/store"

func init() {
	store.RegisterBackend(store.ModeRemote, store.Factory{
		New: func(cfg *store.Config) (store.Backend, error) {
			return New(cfg), nil
		},
		// Credentials must be present before any network call happens;
		// a missing endpoint or key is unavailability, not a failed request.
		Available: func(cfg *store.Config) bool {
			return cfg.Remote.Endpoint != "" && cfg.Remote.APIKey != ""
		},
	})
}

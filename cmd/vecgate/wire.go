// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package main

import (
	"log/slog"

	"github.com/spf13/viper"

	"github.com/vecgate-dev/vecgate/internal/config"
	"github.com/vecgate-dev/vecgate/internal/secrets"
	"github.com/vecgate-dev/vecgate/internal/store"
	_ "github.com/vecgate-dev/vecgate/internal/store/memory"   // register memory backend
	_ "github.com/vecgate-dev/vecgate/internal/store/pinecone" // register remote backend
	_ "github.com/vecgate-dev/vecgate/internal/store/sqlite"   // register embedded backend
	vgerr "github.com/vecgate-dev/vecgate/pkg/errors"
)

// loadConfig unmarshals the already-initialized global Viper and resolves
// any keyring:// credential references.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, err
	}

	if secrets.IsKeyringURI(cfg.Storage.Remote.APIKey) {
		resolved, err := secrets.Resolve(secrets.NewKeyringStore(), cfg.Storage.Remote.APIKey)
		if err != nil {
			// Keep the URI in place; the remote backend will report itself
			// available but fail with the unresolved value, which the
			// operator can see in the error.
			slog.Warn("failed to resolve keyring credential", "error", err)
		} else {
			cfg.Storage.Remote.APIKey = resolved
		}
	}

	return cfg, nil
}

// openStore runs the backend selection policy for the loaded configuration.
func openStore() (*config.Config, *store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.New(cfg.StoreConfig())
	if err != nil {
		return nil, nil, vgerr.Wrap(err, vgerr.CodeCLISetupFailure, "selecting storage backend")
	}

	return cfg, st, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	vgerr "github.com/vecgate-dev/vecgate/pkg/errors"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Redact before printing; the key may have come from the keyring.
			if cfg.Storage.Remote.APIKey != "" {
				cfg.Storage.Remote.APIKey = "(set)"
			}

			out, err := yaml.Marshal(map[string]any{"storage": cfg.Storage})
			if err != nil {
				return vgerr.Errorf(vgerr.CodeCLISetupFailure, "encoding config: %w", err)
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

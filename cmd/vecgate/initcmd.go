// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vecgate-dev/vecgate/internal/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file if none exists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path := config.BootstrapConfig(); path != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote default config to %s\n", path)
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "config already exists, nothing to do")
			return nil
		},
	}
}

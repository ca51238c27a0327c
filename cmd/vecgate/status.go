// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vecgate-dev/vecgate/internal/store"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which storage backend the current configuration selects",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sc := cfg.StoreConfig()

	_, _ = fmt.Fprintf(out, "mode:            %s\n", cfg.Storage.Mode)
	_, _ = fmt.Fprintf(out, "dimensions:      %s\n", dimsLabel(cfg.Storage.Dimensions))
	_, _ = fmt.Fprintf(out, "embedded path:   %s\n", orNone(cfg.Storage.Embedded.Path))
	_, _ = fmt.Fprintf(out, "remote endpoint: %s\n", orNone(cfg.Storage.Remote.Endpoint))
	_, _ = fmt.Fprintf(out, "remote api key:  %s\n", redacted(cfg.Storage.Remote.APIKey))

	st, err := store.New(sc)
	if err != nil {
		_, _ = fmt.Fprintf(out, "selected:        none (%v)\n", err)
		return nil
	}
	defer func() { _ = st.Close() }()

	_, _ = fmt.Fprintf(out, "selected:        %s\n", st.BackendName())
	return nil
}

func dimsLabel(dims int) string {
	if dims == 0 {
		return "established by first insert"
	}
	return fmt.Sprintf("%d", dims)
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func redacted(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "(set)"
}

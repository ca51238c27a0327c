// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vecgate-dev/vecgate/internal/store"
	vgerr "github.com/vecgate-dev/vecgate/pkg/errors"
)

func newInsertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert [file]",
		Short: "Insert vector records from a JSON file or stdin",
		Long: `Insert reads a JSON array of records ({"id", "values", "metadata"}) from
the given file, or from stdin when no file is named, and upserts them into
the selected backend. Records without an id are assigned one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInsert,
	}

	return cmd
}

func runInsert(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return vgerr.Errorf(vgerr.CodeCLIInputInvalid, "opening records file: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	var records []store.VectorRecord
	if err := json.NewDecoder(in).Decode(&records); err != nil {
		return vgerr.Errorf(vgerr.CodeCLIInputInvalid, "decoding records: %w", err)
	}
	if len(records) == 0 {
		return vgerr.New(vgerr.CodeCLIInputInvalid, "no records to insert")
	}

	_, st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	res, err := st.Insert(cmd.Context(), records)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "inserted %d records into %s backend (mutation %s)\n",
		len(records), st.BackendName(), res.MutationID)
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vecgate-dev/vecgate/internal/store"
	vgerr "github.com/vecgate-dev/vecgate/pkg/errors"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query-vector>",
		Short: "Search the store by cosine similarity",
		Long: `Search takes a JSON array of numbers as the query vector and prints the
ranked matches. Equality filters take the form field=value; the numeric
range filter constrains one metadata field.`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().Int("top-k", 0, "maximum results (default from config)")
	cmd.Flags().Float64("min-score", -1, "minimum similarity score (default from config)")
	cmd.Flags().StringArray("eq", nil, "equality filter, field=value (repeatable)")
	cmd.Flags().String("range-field", "", "metadata field for the numeric range filter")
	cmd.Flags().Float64("range-min", 0, "lower bound for the range filter")
	cmd.Flags().Float64("range-max", 0, "upper bound for the range filter")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	var query []float32
	if err := json.Unmarshal([]byte(args[0]), &query); err != nil {
		return vgerr.Errorf(vgerr.CodeCLIInputInvalid, "parsing query vector: %w", err)
	}

	opts, err := searchOptions(cmd)
	if err != nil {
		return err
	}

	cfg, st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if opts.TopK == 0 {
		opts.TopK = cfg.Storage.TopK
	}
	if opts.MinScore < 0 {
		opts.MinScore = cfg.Storage.MinScore
	}

	resp, err := st.Search(cmd.Context(), query, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, r := range resp.Results {
		meta, _ := json.Marshal(r.Metadata)
		_, _ = fmt.Fprintf(out, "%2d. %s  score=%.4f  %s\n", i+1, r.ID, r.Score, meta)
	}
	if len(resp.Results) == 0 {
		_, _ = fmt.Fprintln(out, "no matches")
	}
	if resp.Skipped > 0 {
		_, _ = fmt.Fprintf(out, "warning: skipped %d records with unusable stored vectors\n", resp.Skipped)
	}
	return nil
}

func searchOptions(cmd *cobra.Command) (store.SearchOptions, error) {
	topK, _ := cmd.Flags().GetInt("top-k")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	opts := store.SearchOptions{TopK: topK, MinScore: minScore}

	eqs, _ := cmd.Flags().GetStringArray("eq")
	rangeField, _ := cmd.Flags().GetString("range-field")
	if len(eqs) == 0 && rangeField == "" {
		return opts, nil
	}

	filter := &store.SearchFilter{}
	if len(eqs) > 0 {
		filter.Equals = make(map[string]string, len(eqs))
		for _, eq := range eqs {
			field, value, ok := strings.Cut(eq, "=")
			if !ok || field == "" {
				return opts, vgerr.Errorf(vgerr.CodeCLIInputInvalid, "invalid --eq %q: expected field=value", eq)
			}
			filter.Equals[field] = value
		}
	}

	if rangeField != "" {
		r := &store.NumericRange{Field: rangeField}
		if cmd.Flags().Changed("range-min") {
			v, _ := cmd.Flags().GetFloat64("range-min")
			r.Min = &v
		}
		if cmd.Flags().Changed("range-max") {
			v, _ := cmd.Flags().GetFloat64("range-max")
			r.Max = &v
		}
		filter.Range = r
	}

	opts.Filter = filter
	return opts, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vgerr "github.com/vecgate-dev/vecgate/pkg/errors"
)

// execute runs the root command with the given args and stdin, isolated
// from the user's real config and the global Viper state.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vecgate dev")
	assert.Contains(t, out, "commit:")
}

func TestInsertAndSearch_EmbeddedRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "vectors.db")
	t.Setenv("VECGATE_STORAGE_MODE", "embedded")
	t.Setenv("VECGATE_STORAGE_EMBEDDED_PATH", dbPath)

	records := `[
		{"id": "fuel-1", "values": [1, 0], "metadata": {"category": "fuel"}},
		{"id": "food-1", "values": [0, 1], "metadata": {"category": "food"}}
	]`

	out, err := execute(t, records, "insert")
	require.NoError(t, err)
	assert.Contains(t, out, "inserted 2 records into embedded backend")

	out, err = execute(t, "", "search", "[1, 0]", "--min-score", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "fuel-1")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.Contains(lines[0], "fuel-1"), "closest match should rank first: %q", out)
}

func TestSearch_EqualityFilterFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "vectors.db")
	t.Setenv("VECGATE_STORAGE_MODE", "embedded")
	t.Setenv("VECGATE_STORAGE_EMBEDDED_PATH", dbPath)

	records := `[
		{"id": "fuel-1", "values": [1, 0], "metadata": {"category": "fuel"}},
		{"id": "food-1", "values": [0.9, 0.1], "metadata": {"category": "food"}}
	]`
	_, err := execute(t, records, "insert")
	require.NoError(t, err)

	out, err := execute(t, "", "search", "[1, 0]", "--min-score", "0", "--eq", "category=food")
	require.NoError(t, err)
	assert.Contains(t, out, "food-1")
	assert.NotContains(t, out, "fuel-1")
}

func TestInsert_FromFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VECGATE_STORAGE_MODE", "memory")

	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"values": [1, 2, 3]}]`), 0o600))

	out, err := execute(t, "", "insert", path)
	require.NoError(t, err)
	assert.Contains(t, out, "inserted 1 records into memory backend")
}

func TestInsert_EmptyInput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := execute(t, "[]", "insert")
	require.Error(t, err)
	assert.Equal(t, vgerr.CodeCLIInputInvalid, vgerr.CodeOf(err))
}

func TestInsert_MalformedJSON(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := execute(t, "{not json", "insert")
	require.Error(t, err)
	assert.Equal(t, vgerr.CodeCLIInputInvalid, vgerr.CodeOf(err))
}

func TestSearch_InvalidQueryVector(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := execute(t, "", "search", "not-a-vector")
	require.Error(t, err)
	assert.Equal(t, vgerr.CodeCLIInputInvalid, vgerr.CodeOf(err))
}

func TestSearch_InvalidEqualityFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := execute(t, "", "search", "[1, 0]", "--eq", "no-separator")
	require.Error(t, err)
	assert.Equal(t, vgerr.CodeCLIInputInvalid, vgerr.CodeOf(err))
}

func TestSearch_NoMatches(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VECGATE_STORAGE_MODE", "memory")

	out, err := execute(t, "", "search", "[1, 0]")
	require.NoError(t, err)
	assert.Contains(t, out, "no matches")
}

func TestSearch_ForcedRemoteWithoutCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VECGATE_STORAGE_MODE", "remote")

	_, err := execute(t, "", "search", "[1, 0]")
	require.Error(t, err)
	assert.Equal(t, vgerr.CodeCLISetupFailure, vgerr.CodeOf(err))
}

func TestStatusCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VECGATE_STORAGE_MODE", "memory")

	out, err := execute(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "mode:            memory")
	assert.Contains(t, out, "selected:        memory")
	assert.Contains(t, out, "remote api key:  (not set)")
}

func TestConfigCommand_RedactsAPIKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VECGATE_STORAGE_REMOTE_ENDPOINT", "https://idx.example.test")
	t.Setenv("VECGATE_STORAGE_REMOTE_API_KEY", "pc-super-secret")

	out, err := execute(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "https://idx.example.test")
	assert.NotContains(t, out, "pc-super-secret")
}

func TestInitCommand_CreatesConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	out, err := execute(t, "", "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(home, ".config", "vecgate", "vecgate.yaml"))
}

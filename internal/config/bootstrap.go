// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package config

import (
	_ "embed"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	vgerr "github.com/vecgate-dev/vecgate/pkg/errors"
)

//go:embed vecgate.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/vecgate/vecgate.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", vgerr.Errorf(vgerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vecgate", "vecgate.yaml"), nil
}

// BootstrapConfig writes the default commented config to the standard path
// if it does not already exist. Returns the path written, or empty string
// if the file already existed or an error occurred (non-fatal, logged).
func BootstrapConfig() string {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		slog.Debug("skipping config bootstrap", "error", err)
		return ""
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return "" // already exists
	}

	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Debug("skipping config bootstrap: cannot create directory", "path", dir, "error", err)
		return ""
	}

	if err := os.WriteFile(cfgPath, DefaultConfigYAML, 0o600); err != nil {
		slog.Debug("skipping config bootstrap: cannot write config", "path", cfgPath, "error", err)
		return ""
	}

	slog.Info("created default config", "path", cfgPath)
	return cfgPath
}

// WarnInsecurePermissions logs a warning when the config file is group- or
// world-readable, since it may hold the remote API key. Best effort; never
// fails startup. No-op on Windows where POSIX permission bits are synthetic.
func WarnInsecurePermissions(path string) {
	if path == "" || runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("could not stat config file for permission check", "path", path, "error", err)
		return
	}

	const groupOrOtherRead fs.FileMode = 0o044
	if perm := info.Mode().Perm(); perm&groupOrOtherRead != 0 {
		slog.Warn("config file is readable by other users; the remote API key may be exposed",
			"path", path, "permissions", perm.String())
	}
}

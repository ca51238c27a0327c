// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

// Package config loads and validates vecgate configuration from defaults,
// an optional YAML file, and VECGATE_-prefixed environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vecgate-dev/vecgate/internal/store"
	vgerr "github.com/vecgate-dev/vecgate/pkg/errors"
)

// Config is the top-level vecgate configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
}

// StorageConfig selects and parameterizes the vector-storage backend.
type StorageConfig struct {
	// Mode is auto, memory, embedded, or remote. Forced modes fail fast
	// when their backend is not configured; auto falls back.
	Mode string `mapstructure:"mode" yaml:"mode"`

	// Dimensions fixes the vector dimensionality (1536 for the usual
	// embedding models). 0 lets the first insert establish it.
	Dimensions int `mapstructure:"dimensions" yaml:"dimensions"`

	// TopK and MinScore are the search defaults the CLI applies.
	TopK     int     `mapstructure:"top_k" yaml:"top_k"`
	MinScore float64 `mapstructure:"min_score" yaml:"min_score"`

	Embedded EmbeddedConfig `mapstructure:"embedded" yaml:"embedded"`
	Remote   RemoteConfig   `mapstructure:"remote" yaml:"remote"`
}

// EmbeddedConfig locates the single-file embedded store.
type EmbeddedConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// RemoteConfig holds the edge vector-index service credentials. APIKey may
// be a keyring://service/key URI resolved at load time.
type RemoteConfig struct {
	Endpoint  string        `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey    string        `mapstructure:"api_key" yaml:"api_key"`
	Namespace string        `mapstructure:"namespace" yaml:"namespace"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SetDefaults installs the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.mode", "auto")
	v.SetDefault("storage.dimensions", 0)
	v.SetDefault("storage.top_k", store.DefaultTopK)
	v.SetDefault("storage.min_score", 0.7)
	v.SetDefault("storage.embedded.path", defaultEmbeddedPath())
	v.SetDefault("storage.remote.timeout", 10*time.Second)
}

// SetupEnv binds VECGATE_-prefixed environment variables, plus the bare
// STORAGE_MODE name recognized for compatibility with older deployments.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("VECGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Errors only occur for empty key/name arguments.
	_ = v.BindEnv("storage.mode", "VECGATE_STORAGE_MODE", "STORAGE_MODE")
	_ = v.BindEnv("storage.remote.endpoint", "VECGATE_STORAGE_REMOTE_ENDPOINT")
	_ = v.BindEnv("storage.remote.api_key", "VECGATE_STORAGE_REMOTE_API_KEY")
}

// Load reads configuration from the given path (or defaults when empty)
// with environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, vgerr.Errorf(vgerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper unmarshals and validates a populated Viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, vgerr.Errorf(vgerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, vgerr.Wrapf(errors.Join(errs...), vgerr.CodeConfigValidateInvalidValue, "validating config")
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors, collecting all
// issues rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	validModes := map[string]bool{
		string(store.ModeAuto): true, string(store.ModeMemory): true,
		string(store.ModeEmbedded): true, string(store.ModeRemote): true,
	}
	if !validModes[c.Storage.Mode] {
		errs = append(errs, vgerr.Errorf(vgerr.CodeConfigValidateInvalidValue,
			"storage.mode must be one of [auto, memory, embedded, remote], got %q", c.Storage.Mode))
	}

	if c.Storage.Dimensions < 0 {
		errs = append(errs, vgerr.Errorf(vgerr.CodeConfigValidateInvalidValue,
			"storage.dimensions must be >= 0, got %d", c.Storage.Dimensions))
	}

	if c.Storage.TopK < 0 || c.Storage.TopK > store.MaxTopK {
		errs = append(errs, vgerr.Errorf(vgerr.CodeConfigValidateInvalidValue,
			"storage.top_k must be in 0..%d, got %d", store.MaxTopK, c.Storage.TopK))
	}

	if c.Storage.MinScore < 0 || c.Storage.MinScore > 1 {
		errs = append(errs, vgerr.Errorf(vgerr.CodeConfigValidateInvalidValue,
			"storage.min_score must be in 0..1, got %g", c.Storage.MinScore))
	}

	// The remote credentials only work as a pair.
	hasEndpoint := c.Storage.Remote.Endpoint != ""
	hasKey := c.Storage.Remote.APIKey != ""
	if hasEndpoint != hasKey {
		errs = append(errs, vgerr.Errorf(vgerr.CodeConfigValidateInvalidValue,
			"storage.remote.endpoint and storage.remote.api_key must be set together"))
	}

	if c.Storage.Mode == string(store.ModeEmbedded) && c.Storage.Embedded.Path == "" {
		errs = append(errs, vgerr.Errorf(vgerr.CodeConfigValidateInvalidValue,
			"storage.embedded.path is required when storage.mode is embedded"))
	}

	return errs
}

// StoreConfig maps the loaded configuration into the explicit value the
// backend selector consumes.
func (c *Config) StoreConfig() *store.Config {
	return &store.Config{
		Mode:       store.Mode(c.Storage.Mode),
		Dimensions: c.Storage.Dimensions,
		Embedded:   store.EmbeddedConfig{Path: c.Storage.Embedded.Path},
		Remote: store.RemoteConfig{
			Endpoint:  c.Storage.Remote.Endpoint,
			APIKey:    c.Storage.Remote.APIKey,
			Namespace: c.Storage.Remote.Namespace,
			Timeout:   c.Storage.Remote.Timeout,
		},
	}
}

func defaultEmbeddedPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "vecgate", "vectors.db")
	}
	return filepath.Join(home, ".local", "share", "vecgate", "vectors.db")
}

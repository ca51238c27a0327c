// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

// Package secrets stores the remote index credentials outside the config
// file, in the OS keyring.
package secrets

import (
	"errors"

	"github.com/zalando/go-keyring"

	vgerr "github.com/vecgate-dev/vecgate/pkg/errors"
)

// Store provides secret storage operations. Implementations may use OS
// keyrings or other secure backends.
type Store interface {
	// Store saves a secret value under the given service and key.
	Store(service, key, value string) error

	// Retrieve fetches the secret value for the given service and key.
	// Returns CodeSecretNotFound (via vgerr.HasCode) when absent.
	Retrieve(service, key string) (string, error)

	// Delete removes the secret for the given service and key.
	Delete(service, key string) error
}

// KeyringStore implements Store on the OS keyring: Keychain on macOS,
// secret-service on Linux, Credential Manager on Windows.
type KeyringStore struct{}

// NewKeyringStore returns a KeyringStore.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func (s *KeyringStore) Store(service, key, value string) error {
	if err := validateArgs(service, key); err != nil {
		return err
	}
	if err := keyring.Set(service, key, value); err != nil {
		return vgerr.Wrapf(err, vgerr.CodeSecretStoreFailure, "storing secret %s/%s", service, key)
	}
	return nil
}

func (s *KeyringStore) Retrieve(service, key string) (string, error) {
	if err := validateArgs(service, key); err != nil {
		return "", err
	}
	val, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", vgerr.Errorf(vgerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return "", vgerr.Wrapf(err, vgerr.CodeSecretStoreFailure, "retrieving secret %s/%s", service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(service, key string) error {
	if err := validateArgs(service, key); err != nil {
		return err
	}
	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return vgerr.Errorf(vgerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return vgerr.Wrapf(err, vgerr.CodeSecretStoreFailure, "deleting secret %s/%s", service, key)
	}
	return nil
}

func validateArgs(service, key string) error {
	if service == "" {
		return vgerr.New(vgerr.CodeSecretInvalidInput, "secret service must not be empty")
	}
	if key == "" {
		return vgerr.New(vgerr.CodeSecretInvalidInput, "secret key must not be empty")
	}
	return nil
}

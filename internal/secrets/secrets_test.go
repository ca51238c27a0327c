// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecgate Contributors

package secrets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/vecgate-dev/vecgate/internal/secrets"
	vgerr "github.com/vecgate-dev/vecgate/pkg/errors"
)

func TestIsKeyringURI(t *testing.T) {
	assert.True(t, secrets.IsKeyringURI("keyring://vecgate/api-key"))
	assert.False(t, secrets.IsKeyringURI("pc-abc123"))
	assert.False(t, secrets.IsKeyringURI(""))
	assert.False(t, secrets.IsKeyringURI("Keyring://vecgate/api-key"))
}

func TestParseKeyringURI(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		wantService string
		wantKey     string
		wantErr     bool
	}{
		{name: "valid", uri: "keyring://vecgate/api-key", wantService: "vecgate", wantKey: "api-key"},
		{name: "key with slash", uri: "keyring://vecgate/prod/api-key", wantService: "vecgate", wantKey: "prod/api-key"},
		{name: "not a URI", uri: "plain-value", wantErr: true},
		{name: "missing key", uri: "keyring://vecgate", wantErr: true},
		{name: "empty service", uri: "keyring:///api-key", wantErr: true},
		{name: "empty key", uri: "keyring://vecgate/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, key, err := secrets.ParseKeyringURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, vgerr.CodeSecretInvalidInput, vgerr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantService, service)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

type fakeStore struct {
	values map[string]string
}

func (f *fakeStore) Store(service, key, value string) error {
	f.values[service+"/"+key] = value
	return nil
}

func (f *fakeStore) Retrieve(service, key string) (string, error) {
	val, ok := f.values[service+"/"+key]
	if !ok {
		return "", vgerr.Errorf(vgerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
	}
	return val, nil
}

func (f *fakeStore) Delete(service, key string) error {
	delete(f.values, service+"/"+key)
	return nil
}

func TestResolve(t *testing.T) {
	fake := &fakeStore{values: map[string]string{"vecgate/api-key": "pc-secret"}}

	val, err := secrets.Resolve(fake, "keyring://vecgate/api-key")
	require.NoError(t, err)
	assert.Equal(t, "pc-secret", val)
}

func TestResolve_PassthroughLiteral(t *testing.T) {
	val, err := secrets.Resolve(&fakeStore{values: map[string]string{}}, "pc-literal")
	require.NoError(t, err)
	assert.Equal(t, "pc-literal", val)
}

func TestResolve_NotFound(t *testing.T) {
	_, err := secrets.Resolve(&fakeStore{values: map[string]string{}}, "keyring://vecgate/missing")
	require.Error(t, err)
	assert.Equal(t, vgerr.CodeSecretResolveFailure, vgerr.CodeOf(err))
}

func TestResolve_InvalidURI(t *testing.T) {
	_, err := secrets.Resolve(&fakeStore{values: map[string]string{}}, "keyring://vecgate")
	require.Error(t, err)
	assert.Equal(t, vgerr.CodeSecretInvalidInput, vgerr.CodeOf(err))
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	s := secrets.NewKeyringStore()

	require.NoError(t, s.Store("vecgate-test", "api-key", "pc-abc"))

	val, err := s.Retrieve("vecgate-test", "api-key")
	require.NoError(t, err)
	assert.Equal(t, "pc-abc", val)

	require.NoError(t, s.Delete("vecgate-test", "api-key"))

	_, err = s.Retrieve("vecgate-test", "api-key")
	require.Error(t, err)
	assert.Equal(t, vgerr.CodeSecretNotFound, vgerr.CodeOf(err))
}

func TestKeyringStore_EmptyArgs(t *testing.T) {
	keyring.MockInit()
	s := secrets.NewKeyringStore()

	assert.Error(t, s.Store("", "k", "v"))
	assert.Error(t, s.Store("svc", "", "v"))
	_, err := s.Retrieve("", "k")
	assert.Error(t, err)
	assert.Error(t, s.Delete("svc", ""))
}

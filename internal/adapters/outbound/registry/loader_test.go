package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackshot/stackshot/internal/adapters/outbound/registry"
	"github.com/stackshot/stackshot/internal/domain"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), registry.DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_PreservesOrder(t *testing.T) {
	path := writeRegistry(t, `
services:
  - name: jellyfin
    address: http://localhost:8096
    display_name: Jellyfin
    expected_markers: [Home, Libraries]
  - name: samba
    address: smb://localhost
    skip: true
  - name: sonarr
    address: http://localhost:8989
    api_path: /api/v3/system/status
    api_key_file: sonarr/config.xml
`)

	reg, err := registry.New().Load(path)
	require.NoError(t, err)

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, "jellyfin", all[0].Name)
	assert.Equal(t, []string{"Home", "Libraries"}, all[0].ExpectedMarkers)
	assert.True(t, all[1].Skip)
	assert.True(t, all[2].APICapable())
	assert.Equal(t, filepath.Join(filepath.Dir(path), "sonarr", "config.xml"), all[2].APIKeyFile)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"empty list", "services: []\n", domain.ErrEmptyRegistry},
		{"duplicate", "services:\n  - {name: a, address: http://a}\n  - {name: a, address: http://b}\n", domain.ErrDuplicateService},
		{"no address", "services:\n  - {name: a}\n", domain.ErrInvalidDescriptor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.New().Load(writeRegistry(t, tt.content))
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	_, err := registry.New().Load(writeRegistry(t, "services:\n  - {name: a, adress: http://a}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adress")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := registry.New().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

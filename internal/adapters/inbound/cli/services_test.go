package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackshot/stackshot/internal/adapters/inbound/cli"
	"github.com/stackshot/stackshot/internal/domain"
)

func writeRegistry(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
services:
  - name: sonarr
    address: http://localhost:8989
    api_path: /api/v3/system/status
  - name: samba
    address: smb://localhost
    skip: true
`), 0644))
	return path
}

func TestServicesCommand_Table(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"services", "--registry", writeRegistry(t)})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "sonarr")
	assert.Contains(t, buf.String(), "no web interface")
}

func TestServicesCommand_JSON(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"services", "--registry", writeRegistry(t), "--json"})
	require.NoError(t, cmd.Execute())

	var services []domain.ServiceDescriptor
	require.NoError(t, json.Unmarshal(buf.Bytes(), &services))
	require.Len(t, services, 2)
	assert.True(t, services[1].Skip)
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "stackshot dev")
}

package e2e_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stackshot/stackshot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sonarrKey = "e2e0000000000000000000000000key"

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "stackshot-e2e")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	binaryPath = filepath.Join(dir, "stackshot")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/stackshot")
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func fixturePath(name string) string {
	abs, _ := filepath.Abs(filepath.Join("../../testdata/stack", name))
	return abs
}

// stackServer serves each fixture page under its own prefix, plus a status
// endpoint for sonarr that insists on the API key from its config file.
func stackServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for _, name := range []string{"sonarr", "gateway", "blank"} {
		page := fixturePath(name + ".html")
		mux.HandleFunc("/"+name+"/{$}", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, page)
		})
	}
	mux.HandleFunc("/sonarr/api/v3/system/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != sonarrKey {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"appName":"Sonarr","version":"4.0.0"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeRegistry(t *testing.T, body string) (registry, report string) {
	t.Helper()
	dir := t.TempDir()
	registry = filepath.Join(dir, "services.yaml")
	require.NoError(t, os.WriteFile(registry, []byte(body), 0644))
	return registry, filepath.Join(dir, "docs", "service-registry.json")
}

func run(t *testing.T, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.Output()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}
	return string(out), exitCode
}

func runArgs(registry, report string, extra ...string) []string {
	args := []string{
		"run",
		"--engine", "http",
		"--mode", "quick-triage",
		"--pacing", "0s",
		"--registry", registry,
		"--config", filepath.Join(filepath.Dir(registry), ".stackshot.yaml"),
		"--report", report,
	}
	return append(args, extra...)
}

// --- Run Tests ---

func TestE2E_RunHealthyStack(t *testing.T) {
	srv := stackServer(t)
	registry, report := writeRegistry(t, fmt.Sprintf(`
services:
  - name: sonarr
    address: %s/sonarr/
    display_name: Sonarr
    expected_markers: [Series, Calendar, Activity, Settings]
    api_path: /api/v3/system/status
    api_key_file: %s
  - name: samba
    address: smb://nas.local
    skip: true
`, srv.URL, fixturePath("sonarr-config.xml")))

	out, code := run(t, runArgs(registry, report, "--json")...)
	assert.Equal(t, 0, code)

	var printed domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &printed))
	require.Len(t, printed.Services, 2)

	sonarr := printed.Services[0]
	assert.Equal(t, domain.StatusDocumented, sonarr.Status)
	assert.Equal(t, "Series - Sonarr", sonarr.Title)
	api, ok := sonarr.Verdict(domain.CheckAPI)
	require.True(t, ok)
	assert.True(t, api.Passed)

	assert.Equal(t, domain.StatusSkipped, printed.Services[1].Status)
	assert.Equal(t, 50, printed.Metadata.SuccessRate)

	written, err := os.ReadFile(report)
	require.NoError(t, err)
	var onDisk domain.RunReport
	require.NoError(t, json.Unmarshal(written, &onDisk))
	assert.Equal(t, printed.Metadata.RunID, onDisk.Metadata.RunID)
}

func TestE2E_RunBrokenStack(t *testing.T) {
	srv := stackServer(t)
	registry, report := writeRegistry(t, fmt.Sprintf(`
services:
  - name: sonarr
    address: %[1]s/sonarr/
  - name: overseerr
    address: %[1]s/gateway/
  - name: tautulli
    address: %[1]s/blank/
    expected_markers: [Home, Graphs]
`, srv.URL))

	out, code := run(t, runArgs(registry, report, "--mode", "strict-validation", "--json")...)
	assert.Equal(t, 1, code, "should exit 1 when any service fails")

	var printed domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &printed))
	require.Len(t, printed.Services, 3)
	assert.Equal(t, domain.StatusError, printed.Services[1].Status)
	assert.Contains(t, printed.Services[1].Reason, "502")
	assert.Equal(t, domain.StatusFailed, printed.Services[2].Status)

	_, err := os.Stat(report)
	assert.NoError(t, err, "the report is written even when services fail")
}

func TestE2E_APISuiteWithoutKey(t *testing.T) {
	srv := stackServer(t)
	registry, report := writeRegistry(t, fmt.Sprintf(`
services:
  - name: sonarr
    address: %s/sonarr/
    api_path: /api/v3/system/status
  - name: overseerr
    address: %s/gateway/
`, srv.URL, srv.URL))

	out, code := run(t, runArgs(registry, report, "--suite", "api", "--json")...)
	assert.Equal(t, 1, code)

	var printed domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &printed))
	require.Len(t, printed.Services, 1, "the api suite only evaluates services with a status endpoint")
	assert.Equal(t, "api: HTTP 403", printed.Services[0].Reason)
}

// --- Services Test ---

func TestE2E_Services(t *testing.T) {
	registry, _ := writeRegistry(t, "services:\n  - {name: jellyfin, address: http://localhost:8096}\n")
	out, code := run(t, "services", "--registry", registry)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "jellyfin")
}

// --- Version Test ---

func TestE2E_Version(t *testing.T) {
	out, code := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "stackshot")
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vicaya.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesRootsAndExclusions(t *testing.T) {
	path := writeConfig(t, `
[index]
roots = ["/home/user/projects", "/home/user/documents"]
exclusions = [".git", "*.tmp"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/home/user/projects", "/home/user/documents"}, cfg.Index.Roots)
	assert.Equal(t, []string{".git", "*.tmp"}, cfg.Index.Exclusions)
}

func TestLoadFillsDefaultsForOmittedFields(t *testing.T) {
	path := writeConfig(t, `
[index]
roots = ["/home/user/projects"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Search.MaxResultsDefault)
	assert.Equal(t, 0.25, cfg.Index.RebuildThreshold)
	assert.NotEmpty(t, cfg.Daemon.SocketPath)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[index]
roots = ["/home/user/projects"]
rebuild_threshold = 0.5

[search]
max_results_default = 10

[daemon]
socket_path = "/tmp/custom.sock"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Index.RebuildThreshold)
	assert.Equal(t, 10, cfg.Search.MaxResultsDefault)
	assert.Equal(t, "/tmp/custom.sock", cfg.Daemon.SocketPath)
}

func TestLoadRequiresAtLeastOneRoot(t *testing.T) {
	path := writeConfig(t, `
[daemon]
socket_path = "/tmp/vicayad.sock"
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDefaultHasSaneExclusions(t *testing.T) {
	d := Default()
	assert.Contains(t, d.Index.Exclusions, ".git")
	assert.Contains(t, d.Index.Exclusions, "node_modules")
}

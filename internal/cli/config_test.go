package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".pinset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, "manifest: test-requirements.txt\ndatabase: snapshots.db\npolicy_dir: policy\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "test-requirements.txt", cfg.Manifest)
	assert.Equal(t, "snapshots.db", cfg.Database)
	assert.Equal(t, "policy", cfg.PolicyDir)
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "manifest: [unclosed\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestConfigSuppliesManifestPath(t *testing.T) {
	manifest := writeManifest(t, "mock>=1.2\n")
	cfg := writeConfig(t, "manifest: "+manifest+"\n")

	out, _, err := execute(t, "check", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (0 warning(s))")
}

func TestArgumentWinsOverConfig(t *testing.T) {
	fromConfig := writeManifest(t, "bad->=1.0\n")
	fromArg := writeManifest(t, "mock>=1.2\n")
	cfg := writeConfig(t, "manifest: "+fromConfig+"\n")

	_, _, err := execute(t, "check", fromArg, "--config", cfg)
	assert.NoError(t, err)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("a", "b"))
	assert.Equal(t, "b", firstNonEmpty("", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
	assert.Equal(t, "", firstNonEmpty())
}

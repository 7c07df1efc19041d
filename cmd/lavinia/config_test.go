package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`addr: ":9000"
store: sqlite
db_path: /var/lib/lavinia/lavinia.db
log_level: debug
mcp: false
`), 0o644))

	t.Setenv("LAVINIA_ADDR", ":9100")
	t.Setenv("LAVINIA_MCP", "yes")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":9100", cfg.Addr)
	require.Equal(t, "sqlite", cfg.Store)
	require.Equal(t, "/var/lib/lavinia/lavinia.db", cfg.DBPath)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "Data/Countries", cfg.DataDir)
	require.True(t, cfg.MCP)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"store":     "store: postgres\n",
		"db_path":   "store: sqlite\ndb_path: \"\"\n",
		"country":   "country: \"\"\n",
		"log_level": "log_level: loud\n",
		"yaml":      "addr: [\n",
	} {
		path := filepath.Join(dir, name+".yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := loadConfig(path)
		require.Error(t, err, name)
	}
}

func TestLoadConfig_BadEnvBool(t *testing.T) {
	t.Setenv("LAVINIA_MCP", "sometimes")
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "LAVINIA_MCP")
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "warn", "error"} {
		_, err := parseLevel(s)
		require.NoError(t, err, s)
	}
}

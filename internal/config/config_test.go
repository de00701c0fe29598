package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
name = "test"

[dimension]
tick_rate = "100ms"
leak_threshold = 3
save_timeout = "5s"

[logging]
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "test", cfg.Server.Name)
	require.Equal(t, 100*time.Millisecond, cfg.Dimension.TickRate)
	require.Equal(t, 3, cfg.Dimension.LeakThreshold)
	require.Equal(t, 5*time.Second, cfg.Dimension.SaveTimeout)
	require.Equal(t, "json", cfg.Logging.Format)

	// untouched keys keep their defaults
	require.Equal(t, 200, cfg.Dimension.AuditInterval)
	require.Equal(t, "scripts", cfg.Scripting.Dir)
	require.Equal(t, "info", cfg.Logging.Level)
	require.NotZero(t, cfg.Server.StartTime)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorContains(t, err, "read config")

	_, err = Load(writeConfig(t, "[dimension\n"))
	require.ErrorContains(t, err, "parse config")

	_, err = Load(writeConfig(t, "[dimension]\naudit_interval = 0\n"))
	require.ErrorContains(t, err, "audit_interval")

	_, err = Load(writeConfig(t, "[dimension]\ntick_rate = \"0s\"\n"))
	require.ErrorContains(t, err, "tick_rate")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
	require.Equal(t, 5, cfg.Dimension.LeakThreshold)
}

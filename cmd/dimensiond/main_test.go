package main

import (
	"testing"

	"github.com/l1jgo/dimension/internal/config"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("DIMENSIOND_CONFIG", "")
	require.Equal(t, "config/server.toml", resolveConfigPath(""))

	t.Setenv("DIMENSIOND_CONFIG", "/etc/dimensiond.toml")
	require.Equal(t, "/etc/dimensiond.toml", resolveConfigPath(""))
	require.Equal(t, "local.toml", resolveConfigPath("local.toml"))
}

func TestRootCmd_ConfigFlag(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"-c", "other.toml"}))
	got, err := cmd.Flags().GetString("config")
	require.NoError(t, err)
	require.Equal(t, "other.toml", got)
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(config.LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(-1))

	log, err = newLogger(config.LoggingConfig{Level: "bogus", Format: "console"})
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(-1), "unknown level falls back to info")
}

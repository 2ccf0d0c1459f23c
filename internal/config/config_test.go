package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lowlatency/arena/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	path := writeTempConfig(t, "server_name: Arena\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPlayerName, cfg.PlayerName)
	assert.Equal(t, uint16(config.DefaultServerPort), cfg.ServerPort)
	assert.Equal(t, "Arena", cfg.ServerName)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeTempConfig(t, "player_name: alice\nserver_port: 4000\nvsync: true\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.PlayerName)
	assert.Equal(t, uint16(4000), cfg.ServerPort)
	assert.True(t, cfg.VSync)
}

func TestLoadRejectsOversizedNames(t *testing.T) {
	long := make([]byte, config.MaxServerNameBytes+1)
	for i := range long {
		long[i] = 'x'
	}
	path := writeTempConfig(t, "server_name: "+string(long)+"\n")

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

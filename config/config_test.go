package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndLoad(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig(home)
	cfg.App.APIListenAddr = "0.0.0.0:9090"
	cfg.App.QueryCacheSize = 12
	cfg.App.Metrics = false
	cfg.Moniker = "capsule-node"
	WriteConfigFiles(cfg)

	loaded, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, home, loaded.App.Home)
	assert.Equal(t, filepath.Join(home, "data"), loaded.App.DataDir())
	assert.Equal(t, "0.0.0.0:9090", loaded.App.APIListenAddr)
	assert.Equal(t, 12, loaded.App.QueryCacheSize)
	assert.False(t, loaded.App.Metrics)
	assert.True(t, loaded.App.APIEnable)
	assert.Equal(t, "capsule-node", loaded.Moniker)
	assert.Equal(t, cfg.Consensus.TimeoutCommit, loaded.Consensus.TimeoutCommit)
}

func TestLoadWithoutAppConfig(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig(home)
	WriteConfigFiles(cfg)
	require.NoError(t, os.Remove(cfg.AppConfigFile()))

	loaded, err := Load(home)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIListen, loaded.App.APIListenAddr)
	assert.Equal(t, DefaultQueryCache, loaded.App.QueryCacheSize)
}

func TestLoadMissingConfig(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestAppConfigValidateBasic(t *testing.T) {
	c := DefaultAppConfig(t.TempDir())
	require.NoError(t, c.ValidateBasic())

	c.QueryCacheSize = -1
	assert.Error(t, c.ValidateBasic())

	c = DefaultAppConfig(t.TempDir())
	c.APIListenAddr = ""
	assert.Error(t, c.ValidateBasic())
	c.APIEnable = false
	assert.NoError(t, c.ValidateBasic())
}

func TestReservationCost(t *testing.T) {
	assert.Equal(t, uint64(1_566_000), ReservationCost(DefaultLamportsPerByteYear, 97))
	assert.Equal(t, uint64(3_681_840), ReservationCost(DefaultLamportsPerByteYear, 401))
	assert.Equal(t, uint64(256), ReservationCost(1, 0))
}

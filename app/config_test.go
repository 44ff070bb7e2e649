package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "memdb backend", mutate: func(c *Config) { c.DBBackend = "memdb" }},
		{name: "empty home", mutate: func(c *Config) { c.Home = "" }, wantErr: true},
		{name: "empty chain id", mutate: func(c *Config) { c.ChainID = "" }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.DBBackend = "rocksdb" }, wantErr: true},
		{name: "bad api listen", mutate: func(c *Config) { c.API.Listen = "1318" }, wantErr: true},
		{name: "zero rate limit", mutate: func(c *Config) { c.API.RateLimitRPS = 0 }, wantErr: true},
		{name: "bad metrics listen", mutate: func(c *Config) { c.Metrics.Listen = "nope" }, wantErr: true},
		{name: "metrics disabled ignores listen", mutate: func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.Listen = ""
		}},
		{name: "telemetry sample rate", mutate: func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.SampleRate = 2
		}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Home = "/var/lib/zklr"

	require.Equal(t, filepath.Join("/var/lib/zklr", "config", "genesis.json"), cfg.GenesisFile())
	require.Equal(t, filepath.Join("/var/lib/zklr", "config", "eligibility.vk"), cfg.VerifyingKeyFile())
	require.Equal(t, filepath.Join("/var/lib/zklr", "data"), cfg.DataDir())
}

func TestOpenDB_Memdb(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Home = t.TempDir()
	cfg.DBBackend = "memdb"

	db, err := cfg.OpenDB()
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestGenesisFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), GenesisFileName)
	gs := NewDefaultGenesisState("zklr-test")
	gs.Balances = append(gs.Balances, Balance{Address: traderAddr, Coins: coins(42)})

	require.NoError(t, WriteGenesis(path, gs))
	loaded, err := LoadGenesis(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	require.Equal(t, gs.ChainID, loaded.ChainID)
	require.Equal(t, gs.Balances, loaded.Balances)
}

func TestGenesisValidate_Balances(t *testing.T) {
	gs := NewDefaultGenesisState("zklr-test")
	gs.Balances = []Balance{
		{Address: traderAddr, Coins: coins(1)},
		{Address: traderAddr, Coins: coins(2)},
	}
	require.ErrorContains(t, gs.Validate(), "duplicate")

	gs.Balances = []Balance{{Address: "bogus", Coins: coins(1)}}
	require.Error(t, gs.Validate())
}

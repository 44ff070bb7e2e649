package app

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	dbm "github.com/cosmos/cosmos-db"

	"github.com/zklr-network/zklr/app/telemetry"
)

// DefaultNodeHome is the default home directory for zklrd
var DefaultNodeHome string

func init() {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		userHomeDir = "."
	}
	DefaultNodeHome = filepath.Join(userHomeDir, ".zklr")
}

const (
	// ConfigFileName is the daemon config file under <home>/config
	ConfigFileName = "zklrd.toml"
	// GenesisFileName is the genesis file under <home>/config
	GenesisFileName = "genesis.json"
	// VerifyingKeyFileName is the Groth16 verifying key under <home>/config
	VerifyingKeyFileName = "eligibility.vk"
	// ProvingKeyFileName is the matching proving key, used by `zklrd keys prove`
	ProvingKeyFileName = "eligibility.pk"

	dataDirName = "data"
	dbName      = "zklr"
)

// Config is the daemon configuration, loaded by viper from flags, the
// environment and <home>/config/zklrd.toml.
type Config struct {
	Home            string `mapstructure:"home"`
	ChainID         string `mapstructure:"chain-id"`
	DBBackend       string `mapstructure:"db-backend"`
	LogLevel        string `mapstructure:"log-level"`
	CheckInvariants bool   `mapstructure:"check-invariants"`

	// ZKVerifier enables the Groth16 eligibility verifier. The verifying key
	// is read from <home>/config/eligibility.vk.
	ZKVerifier bool `mapstructure:"zk-verifier"`

	API       APIConfig        `mapstructure:"api"`
	Metrics   MetricsConfig    `mapstructure:"metrics"`
	Telemetry telemetry.Config `mapstructure:"telemetry"`
}

// APIConfig configures the HTTP API served by `zklrd serve`
type APIConfig struct {
	Listen          string        `mapstructure:"listen"`
	JWTSecret       string        `mapstructure:"jwt-secret"`
	RateLimitRPS    int           `mapstructure:"rate-limit-rps"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	// EnableFaucet exposes the ledger mint endpoint. Development only.
	EnableFaucet bool `mapstructure:"enable-faucet"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// DefaultConfig returns the default daemon configuration
func DefaultConfig() Config {
	return Config{
		Home:      DefaultNodeHome,
		ChainID:   DefaultChainID,
		DBBackend: string(dbm.GoLevelDBBackend),
		LogLevel:  "info",
		API: APIConfig{
			Listen:          "127.0.0.1:1318",
			RateLimitRPS:    100,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Listen:  "127.0.0.1:36660",
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

// Validate checks the configuration for obvious mistakes
func (c Config) Validate() error {
	if c.Home == "" {
		return fmt.Errorf("home directory is required")
	}
	if c.ChainID == "" {
		return fmt.Errorf("chain id is required")
	}
	switch dbm.BackendType(c.DBBackend) {
	case dbm.GoLevelDBBackend, dbm.MemDBBackend:
	default:
		return fmt.Errorf("unsupported db backend %q", c.DBBackend)
	}
	if _, _, err := net.SplitHostPort(c.API.Listen); err != nil {
		return fmt.Errorf("invalid api listen address %q: %w", c.API.Listen, err)
	}
	if c.API.RateLimitRPS <= 0 {
		return fmt.Errorf("api rate limit must be positive")
	}
	if c.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
			return fmt.Errorf("invalid metrics listen address %q: %w", c.Metrics.Listen, err)
		}
	}
	if err := telemetry.ValidateConfig(c.Telemetry); err != nil {
		return fmt.Errorf("invalid telemetry config: %w", err)
	}
	return nil
}

// ConfigDir returns <home>/config
func (c Config) ConfigDir() string { return filepath.Join(c.Home, "config") }

// DataDir returns <home>/data
func (c Config) DataDir() string { return filepath.Join(c.Home, dataDirName) }

// GenesisFile returns the genesis path
func (c Config) GenesisFile() string { return filepath.Join(c.ConfigDir(), GenesisFileName) }

// VerifyingKeyFile returns the Groth16 verifying key path
func (c Config) VerifyingKeyFile() string { return filepath.Join(c.ConfigDir(), VerifyingKeyFileName) }

// ProvingKeyFile returns the Groth16 proving key path
func (c Config) ProvingKeyFile() string { return filepath.Join(c.ConfigDir(), ProvingKeyFileName) }

// OpenDB opens the engine database with the configured backend
func (c Config) OpenDB() (dbm.DB, error) {
	backend := dbm.BackendType(c.DBBackend)
	if backend == dbm.MemDBBackend {
		return dbm.NewMemDB(), nil
	}
	if err := os.MkdirAll(c.DataDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return dbm.NewDB(dbName, backend, c.DataDir())
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zklr-network/zklr/app"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. ZKLRD_API_LISTEN for api.listen.
const EnvPrefix = "ZKLRD"

const (
	flagHome            = "home"
	flagChainID         = "chain-id"
	flagDBBackend       = "db-backend"
	flagLogLevel        = "log-level"
	flagCheckInvariants = "check-invariants"
	flagZKVerifier      = "zk-verifier"
)

// cliContext carries the effective configuration from the root command to
// its subcommands.
type cliContext struct {
	v      *viper.Viper
	config app.Config
	logger log.Logger
}

// NewRootCmd creates the zklrd root command. It is called once in the main
// function.
func NewRootCmd() *cobra.Command {
	initSDKConfig()

	cctx := &cliContext{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "zklrd",
		Short: "ZKLR settlement engine daemon",
		Long: `zklrd runs the zero-knowledge liquidity router settlement engine: traders stake
collateral, prove eligibility, commit to orders and reveal them for bandwidth
priority while liquidity providers fund the vault.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			return cctx.load(cmd)
		},
	}

	defaults := app.DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.String(flagHome, defaults.Home, "directory for config and data")
	pf.String(flagChainID, defaults.ChainID, "the engine chain ID")
	pf.String(flagDBBackend, defaults.DBBackend, "database backend (goleveldb|memdb)")
	pf.String(flagLogLevel, defaults.LogLevel, "log level (trace|debug|info|warn|error)")
	pf.Bool(flagCheckInvariants, defaults.CheckInvariants, "check module invariants after every operation")
	pf.Bool(flagZKVerifier, defaults.ZKVerifier, "verify eligibility proofs with the Groth16 verifying key")

	rootCmd.AddCommand(
		InitCmd(cctx),
		TxCmd(cctx),
		QueryCmd(cctx),
		ServeCmd(cctx),
		KeysCmd(cctx),
		TokenCmd(cctx),
		ExportCmd(cctx),
	)

	return rootCmd
}

var sdkConfigOnce sync.Once

// initSDKConfig installs the zklr bech32 prefixes
func initSDKConfig() {
	sdkConfigOnce.Do(func() {
		app.SetConfig()
	})
}

// load resolves the configuration from defaults, <home>/config/zklrd.toml,
// the environment and command flags, in increasing precedence.
func (c *cliContext) load(cmd *cobra.Command) error {
	v := c.v
	for key, value := range configValues(app.DefaultConfig()) {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	configFile := filepath.Join(v.GetString(flagHome), "config", app.ConfigFileName)
	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read %s: %w", configFile, err)
		}
	}

	var cfg app.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Telemetry.ChainID = cfg.ChainID

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}

	c.config = cfg
	c.logger = logger
	return nil
}

func newLogger(w io.Writer, level string) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewLogger(w, log.LevelOption(lvl), log.ColorOption(false)), nil
}

// configValues flattens cfg into viper keys. Durations are written as
// strings so the config file stays readable.
func configValues(cfg app.Config) map[string]interface{} {
	return map[string]interface{}{
		flagHome:            cfg.Home,
		flagChainID:         cfg.ChainID,
		flagDBBackend:       cfg.DBBackend,
		flagLogLevel:        cfg.LogLevel,
		flagCheckInvariants: cfg.CheckInvariants,
		flagZKVerifier:      cfg.ZKVerifier,

		"api.listen":           cfg.API.Listen,
		"api.jwt-secret":       cfg.API.JWTSecret,
		"api.rate-limit-rps":   cfg.API.RateLimitRPS,
		"api.read-timeout":     cfg.API.ReadTimeout.String(),
		"api.write-timeout":    cfg.API.WriteTimeout.String(),
		"api.shutdown-timeout": cfg.API.ShutdownTimeout.String(),
		"api.enable-faucet":    cfg.API.EnableFaucet,

		"metrics.enabled": cfg.Metrics.Enabled,
		"metrics.listen":  cfg.Metrics.Listen,

		"telemetry.enabled":            cfg.Telemetry.Enabled,
		"telemetry.otlp-endpoint":      cfg.Telemetry.OTLPEndpoint,
		"telemetry.sample-rate":        cfg.Telemetry.SampleRate,
		"telemetry.environment":        cfg.Telemetry.Environment,
		"telemetry.prometheus-enabled": cfg.Telemetry.PrometheusEnabled,
	}
}

// writeConfig writes cfg to path as TOML. The home directory is implied by
// the file location and is not written.
func writeConfig(path string, cfg app.Config) error {
	out := viper.New()
	out.SetConfigType("toml")
	for key, value := range configValues(cfg) {
		if key == flagHome {
			continue
		}
		out.Set(key, value)
	}
	if err := out.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

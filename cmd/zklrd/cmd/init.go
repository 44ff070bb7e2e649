package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/zklr-network/zklr/app"
	"github.com/zklr-network/zklr/x/zklr/types"
)

const (
	flagOverwrite    = "overwrite"
	flagAdmin        = "admin"
	flagBalance      = "balance"
	flagDefaultDenom = "default-denom"
)

// InitCmd returns a command that writes the daemon config and genesis files
func InitCmd(cctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the daemon configuration and genesis files",
		Long: `Initialize the daemon configuration and genesis files under <home>/config.

Example:
  zklrd init --chain-id zklr-testnet-1 --admin zklr1... --balance zklr1...=1000000
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := cctx.config

			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)
			if !overwrite && fileExists(cfg.GenesisFile()) {
				return fmt.Errorf("genesis.json file already exists: %v", cfg.GenesisFile())
			}

			if err := os.MkdirAll(cfg.ConfigDir(), 0o755); err != nil {
				return fmt.Errorf("failed to create config dir: %w", err)
			}

			genesis := app.NewDefaultGenesisState(cfg.ChainID)

			denom, _ := cmd.Flags().GetString(flagDefaultDenom)
			if denom != "" {
				genesis.Zklr.Params.StakeDenom = denom
			}

			admin, _ := cmd.Flags().GetString(flagAdmin)
			if admin != "" {
				if _, err := sdk.AccAddressFromBech32(admin); err != nil {
					return fmt.Errorf("invalid admin address: %w", err)
				}
				genesis.Zklr.Global = &types.GlobalState{Admin: admin}
			}

			balances, _ := cmd.Flags().GetStringSlice(flagBalance)
			for _, entry := range balances {
				balance, err := parseBalance(entry, genesis.Zklr.Params.StakeDenom)
				if err != nil {
					return err
				}
				genesis.Balances = append(genesis.Balances, balance)
			}

			if err := genesis.Validate(); err != nil {
				return fmt.Errorf("invalid genesis: %w", err)
			}
			if err := app.WriteGenesis(cfg.GenesisFile(), genesis); err != nil {
				return err
			}

			configFile := filepath.Join(cfg.ConfigDir(), app.ConfigFileName)
			if overwrite || !fileExists(configFile) {
				if err := writeConfig(configFile, cfg); err != nil {
					return err
				}
			}

			cctx.logger.Info("initialized node home", "home", cfg.Home, "chain_id", cfg.ChainID)
			fmt.Fprintf(cmd.OutOrStdout(), "Genesis written to %s\n", cfg.GenesisFile())
			return nil
		},
	}

	cmd.Flags().Bool(flagOverwrite, false, "overwrite existing genesis and config files")
	cmd.Flags().String(flagAdmin, "", "initialize the engine at genesis with this administrator")
	cmd.Flags().StringSlice(flagBalance, nil, "seed a ledger balance, as address=amount (repeatable)")
	cmd.Flags().String(flagDefaultDenom, "", "stake denomination (default "+app.BondDenom+")")

	return cmd
}

// parseBalance parses address=amount into a genesis balance of denom
func parseBalance(entry, denom string) (app.Balance, error) {
	addr, amountStr, ok := strings.Cut(entry, "=")
	if !ok {
		return app.Balance{}, fmt.Errorf("invalid balance %q: expected address=amount", entry)
	}
	if _, err := sdk.AccAddressFromBech32(addr); err != nil {
		return app.Balance{}, fmt.Errorf("invalid balance address %q: %w", addr, err)
	}
	amount, ok := math.NewIntFromString(amountStr)
	if !ok || !amount.IsPositive() {
		return app.Balance{}, fmt.Errorf("invalid balance amount %q", amountStr)
	}
	return app.Balance{Address: addr, Coins: sdk.NewCoins(sdk.NewCoin(denom, amount))}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

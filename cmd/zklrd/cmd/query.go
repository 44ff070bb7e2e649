package cmd

import (
	"github.com/cosmos/cosmos-sdk/types/query"
	"github.com/spf13/cobra"

	"github.com/zklr-network/zklr/app"
	"github.com/zklr-network/zklr/x/zklr/types"
)

const (
	flagTrader = "trader"
	flagLimit  = "limit"
	flagOffset = "offset"
)

// QueryCmd returns the query commands
func QueryCmd(cctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "query",
		Aliases:                    []string{"q"},
		Short:                      "Querying subcommands",
		SuggestionsMinimumDistance: 2,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		queryCmd(cctx, "params", "Show the module parameters", cobra.NoArgs,
			func(cmd *cobra.Command, e *app.Engine, _ []string) (interface{}, error) {
				return e.Params(cmd.Context())
			}),
		queryCmd(cctx, "global", "Show the administrator and aggregate totals", cobra.NoArgs,
			func(cmd *cobra.Command, e *app.Engine, _ []string) (interface{}, error) {
				return e.GlobalState(cmd.Context())
			}),
		queryCmd(cctx, "trader [address]", "Show a trader account and its status", cobra.ExactArgs(1),
			func(cmd *cobra.Command, e *app.Engine, args []string) (interface{}, error) {
				return e.Trader(cmd.Context(), types.QueryTraderRequest{Trader: args[0]})
			}),
		queryCmd(cctx, "liquidity [address]", "Show a liquidity account", cobra.ExactArgs(1),
			func(cmd *cobra.Command, e *app.Engine, args []string) (interface{}, error) {
				return e.LiquidityAccount(cmd.Context(), types.QueryLiquidityAccountRequest{Provider: args[0]})
			}),
		queryCmd(cctx, "bandwidth [address]", "Preview a trader's bandwidth allocation", cobra.ExactArgs(1),
			func(cmd *cobra.Command, e *app.Engine, args []string) (interface{}, error) {
				return e.Bandwidth(cmd.Context(), types.QueryBandwidthRequest{Trader: args[0]})
			}),
		querySlashesCmd(cctx),
		queryCmd(cctx, "balance [address]", "Show an account's stake denom balance", cobra.ExactArgs(1),
			func(cmd *cobra.Command, e *app.Engine, args []string) (interface{}, error) {
				coin, err := e.Balance(cmd.Context(), args[0])
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"address": args[0], "balance": coin}, nil
			}),
		queryCmd(cctx, "vaults", "Show the vault and fee collector balances", cobra.NoArgs,
			func(cmd *cobra.Command, e *app.Engine, _ []string) (interface{}, error) {
				vaults, err := e.VaultBalances(cmd.Context())
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"vaults": vaults}, nil
			}),
		queryCmd(cctx, "commitment [order-hex]", "Compute the order commitment under the current params", cobra.ExactArgs(1),
			func(cmd *cobra.Command, e *app.Engine, args []string) (interface{}, error) {
				order, err := parseHex("order", args[0])
				if err != nil {
					return nil, err
				}
				params, err := e.Params(cmd.Context())
				if err != nil {
					return nil, err
				}
				digest, err := types.ComputeOrderCommitment(params.Params.CommitmentHash, order)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"hash": params.Params.CommitmentHash, "commitment": digest}, nil
			}),
		queryCmd(cctx, "status", "Show the chain ID and latest height", cobra.NoArgs,
			func(_ *cobra.Command, e *app.Engine, _ []string) (interface{}, error) {
				return map[string]interface{}{"chain_id": e.ChainID(), "height": e.Height()}, nil
			}),
	)

	return cmd
}

func queryCmd(
	cctx *cliContext,
	use, short string,
	args cobra.PositionalArgs,
	run func(*cobra.Command, *app.Engine, []string) (interface{}, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cctx, func(e *app.Engine) error {
				resp, err := run(cmd, e, args)
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
}

func querySlashesCmd(cctx *cliContext) *cobra.Command {
	cmd := queryCmd(cctx, "slashes", "List slash records", cobra.NoArgs,
		func(cmd *cobra.Command, e *app.Engine, _ []string) (interface{}, error) {
			trader, _ := cmd.Flags().GetString(flagTrader)
			limit, _ := cmd.Flags().GetUint64(flagLimit)
			offset, _ := cmd.Flags().GetUint64(flagOffset)
			return e.SlashRecords(cmd.Context(), types.QuerySlashRecordsRequest{
				Trader:     trader,
				Pagination: &query.PageRequest{Limit: limit, Offset: offset, CountTotal: true},
			})
		})
	cmd.Flags().String(flagTrader, "", "only list records for this trader")
	cmd.Flags().Uint64(flagLimit, 100, "maximum number of records")
	cmd.Flags().Uint64(flagOffset, 0, "number of records to skip")
	return cmd
}

package cmd

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zklr-network/zklr/app"
	"github.com/zklr-network/zklr/x/zklr/types"
)

const (
	flagFrom         = "from"
	flagPriorityPool = "priority-pool"
	flagTradeVolume  = "trade-volume"
)

// TxCmd returns the transaction commands. Each runs one operation against
// the local engine database; the daemon must not be serving the same home.
func TxCmd(cctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "tx",
		Short:                      "Transactions subcommands",
		SuggestionsMinimumDistance: 2,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		txInitializeCmd(cctx),
		txOpenTraderCmd(cctx),
		txOpenLiquidityCmd(cctx),
		txStakeCmd(cctx),
		txVerifyCmd(cctx),
		txBatchCmd(cctx),
		txRevealCmd(cctx),
		txUnstakeCmd(cctx),
		txProvideLiquidityCmd(cctx),
		txUpdateParamsCmd(cctx),
		txAllocateBandwidthCmd(cctx),
		txMintCmd(cctx),
	)

	for _, sub := range cmd.Commands() {
		if sub.Name() != "mint" {
			sub.Flags().String(flagFrom, "", "address of the signer")
			_ = sub.MarkFlagRequired(flagFrom)
		}
	}

	return cmd
}

func txInitializeCmd(cctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "initialize",
		Short: "Create the global state with the signer as administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTx(cmd, cctx, func(ctx context.Context, e *app.Engine, from string) (interface{}, error) {
				return e.Initialize(ctx, types.MsgInitialize{Admin: from})
			})
		},
	}
}

func txOpenTraderCmd(cctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "open-trader",
		Short: "Open a trader account for the signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTx(cmd, cctx, func(ctx context.Context, e *app.Engine, from string) (interface{}, error) {
				return e.OpenTraderAccount(ctx, types.MsgOpenTraderAccount{Trader: from})
			})
		},
	}
}

func txOpenLiquidityCmd(cctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open-liquidity",
		Short: "Open a liquidity account for the signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			priority, _ := cmd.Flags().GetBool(flagPriorityPool)
			return runTx(cmd, cctx, func(ctx context.Context, e *app.Engine, from string) (interface{}, error) {
				return e.OpenLiquidityAccount(ctx, types.MsgOpenLiquidityAccount{Provider: from, PriorityPool: priority})
			})
		},
	}
	cmd.Flags().Bool(flagPriorityPool, false, "join the priority pool")
	return cmd
}

func txStakeCmd(cctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stake [amount]",
		Short: "Stake collateral",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return runTx(cmd, cctx, func(ctx context.Context, e *app.Engine, from string) (interface{}, error) {
				return e.Stake(ctx, types.MsgStake{Trader: from, Amount: amount})
			})
		},
	}
}

func txVerifyCmd(cctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [proof-hex] [commitment-hex] [latency]",
		Short: "Submit an eligibility proof and an order commitment",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			proof, commitment, latency, err := parseVerifyArgs(args)
			if err != nil {
				return err
			}
			return runTx(cmd, cctx, func(ctx context.Context, e *app.Engine, from string) (interface{}, error) {
				return e.VerifyPriority(ctx, types.MsgVerifyPriority{
					Trader:     from,
					Proof:      proof,
					Commitment: commitment,
					Latency:    latency,
				})
			})
		},
	}
}

func txBatchCmd(cctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "batch-verify [amount] [proof-hex] [commitment-hex] [latency]",
		Short: "Stake and verify in one operation",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			proof, commitment, latency, err := parseVerifyArgs(args[1:])
			if err != nil {
				return err
			}
			return runTx(cmd, cctx, func(ctx context.Context, e *app.Engine, from string) (interface{}, error) {
				return e.BatchStakeAndVerify(ctx, types.MsgBatchStakeAndVerify{
					Trader:     from,
					Amount:     amount,
					Proof:      proof,
					Commitment: commitment,
					Latency:    latency,
				})
			})
		},
	}
}

func txRevealCmd(cctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reveal [order-hex] [range-proof-hex]",
		Short: "Reveal a committed order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := parseHex("order", args[0])
			if err != nil {
				return err
			}
			rangeProof, err := parseHex("range proof", args[1])
			if err != nil {
				return err
			}
			return runTx(cmd, cctx, func(ctx context.Context, e *app.Engine, from string) (interface{}, error) {
				return e.RevealTrade(ctx, types.MsgRevealTrade{Trader: from, Order: order, OrderRangeProof: rangeProof})
			})
		},
	}
}

func txUnstakeCmd(cctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unstake [amount]",
		Short: "Withdraw stake after the lockup period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			return runTx(cmd, cctx, func(ctx context.Context, e *app.Engine, from string) (interface{}, error) {
				return e.Unstake(ctx, types.MsgUnstake{Trader: from, Amount: amount})
			})
		},
	}
}

func txProvideLiquidityCmd(cctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provide-liquidity [amount]",
		Short: "Deposit into the liquidity vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			volume, _ := cmd.Flags().GetUint64(flagTradeVolume)
			return runTx(cmd, cctx, func(ctx context.Context, e *app.Engine, from string) (interface{}, error) {
				return e.ProvideLiquidity(ctx, types.MsgProvideLiquidity{Provider: from, Amount: amount, TradeVolume: volume})
			})
		},
	}
	cmd.Flags().Uint64(flagTradeVolume, 0, "trade volume reported with the deposit")
	return cmd
}

func txUpdateParamsCmd(cctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update-params [params-json-file]",
		Short: "Replace the module parameters (administrator only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read params: %w", err)
			}
			var params types.Params
			if err := json.Unmarshal(bz, &params); err != nil {
				return fmt.Errorf("failed to decode params: %w", err)
			}
			return runTx(cmd, cctx, func(ctx context.Context, e *app.Engine, from string) (interface{}, error) {
				return e.UpdateParams(ctx, types.MsgUpdateParams{Authority: from, Params: params})
			})
		},
	}
}

func txAllocateBandwidthCmd(cctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "allocate-bandwidth",
		Short: "Score the signer and record the bandwidth allocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTx(cmd, cctx, func(ctx context.Context, e *app.Engine, from string) (interface{}, error) {
				alloc, err := e.AllocateBandwidth(ctx, from)
				if err != nil {
					return nil, err
				}
				return types.QueryBandwidthResponse{Allocation: alloc}, nil
			})
		},
	}
}

func txMintCmd(cctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mint [address] [amount]",
		Short: "Credit stake denom to an account (development only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return withEngine(cctx, func(e *app.Engine) error {
				coin, err := e.Mint(cmd.Context(), args[0], amount)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]interface{}{"address": args[0], "balance": coin})
			})
		},
	}
}

// runTx opens the engine, runs op as the --from signer and prints the result
func runTx(cmd *cobra.Command, cctx *cliContext, op func(context.Context, *app.Engine, string) (interface{}, error)) error {
	from, _ := cmd.Flags().GetString(flagFrom)
	return withEngine(cctx, func(e *app.Engine) error {
		resp, err := op(cmd.Context(), e, from)
		if err != nil {
			return err
		}
		return printJSON(cmd, resp)
	})
}

// withEngine opens the configured engine for the duration of fn
func withEngine(cctx *cliContext, fn func(*app.Engine) error) error {
	engine, err := app.NewEngineFromConfig(cctx.config, cctx.logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	return fn(engine)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
	return err
}

func parseAmount(s string) (uint64, error) {
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

func parseHex(name, s string) ([]byte, error) {
	bz, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s hex: %w", name, err)
	}
	return bz, nil
}

func parseVerifyArgs(args []string) ([]byte, types.Digest, uint64, error) {
	proof, err := parseHex("proof", args[0])
	if err != nil {
		return nil, types.Digest{}, 0, err
	}
	commitment, err := types.DigestFromHex(strings.TrimPrefix(args[1], "0x"))
	if err != nil {
		return nil, types.Digest{}, 0, err
	}
	latency, err := strconv.ParseUint(args[2], 10, 64)
	if err != nil {
		return nil, types.Digest{}, 0, fmt.Errorf("invalid latency %q: %w", args[2], err)
	}
	return proof, commitment, latency, nil
}

package keeper

import (
	"fmt"
	"math/big"

	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// RegisterInvariants registers all zklr invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "total-staked", TotalStakedInvariant(k))
	ir.RegisterRoute(types.ModuleName, "total-liquidity", TotalLiquidityInvariant(k))
	ir.RegisterRoute(types.ModuleName, "stake-vault-solvency", StakeVaultSolvencyInvariant(k))
	ir.RegisterRoute(types.ModuleName, "liquidity-vault-solvency", LiquidityVaultSolvencyInvariant(k))
	ir.RegisterRoute(types.ModuleName, "strike-bound", StrikeBoundInvariant(k))
}

// AllInvariants runs all invariants of the zklr module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		for _, inv := range []sdk.Invariant{
			TotalStakedInvariant(k),
			TotalLiquidityInvariant(k),
			StakeVaultSolvencyInvariant(k),
			LiquidityVaultSolvencyInvariant(k),
			StrikeBoundInvariant(k),
		} {
			if res, stop := inv(ctx); stop {
				return res, stop
			}
		}
		return "", false
	}
}

// TotalStakedInvariant checks the aggregate stake equals the sum of trader stakes
func TotalStakedInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		global, ok := globalOrEmpty(ctx, k)
		sum := new(big.Int)
		err := k.IterateTraderAccounts(ctx, func(acct types.TraderAccount) bool {
			sum.Add(sum, new(big.Int).SetUint64(acct.StakedAmount))
			return false
		})
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "total-staked", err.Error()), true
		}

		broken := sum.Cmp(new(big.Int).SetUint64(global.TotalStaked)) != 0 || (!ok && sum.Sign() != 0)
		return sdk.FormatInvariant(
			types.ModuleName, "total-staked",
			fmt.Sprintf("aggregate total_staked %d, sum of trader stakes %s", global.TotalStaked, sum),
		), broken
	}
}

// TotalLiquidityInvariant checks the aggregate liquidity equals the sum of
// liquidity provided
func TotalLiquidityInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		global, ok := globalOrEmpty(ctx, k)
		sum := new(big.Int)
		err := k.IterateLiquidityAccounts(ctx, func(acct types.LiquidityAccount) bool {
			sum.Add(sum, new(big.Int).SetUint64(acct.LiquidityProvided))
			return false
		})
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "total-liquidity", err.Error()), true
		}

		broken := sum.Cmp(new(big.Int).SetUint64(global.TotalLiquidity)) != 0 || (!ok && sum.Sign() != 0)
		return sdk.FormatInvariant(
			types.ModuleName, "total-liquidity",
			fmt.Sprintf("aggregate total_liquidity %d, sum of liquidity provided %s", global.TotalLiquidity, sum),
		), broken
	}
}

// StakeVaultSolvencyInvariant checks the stake vault holds at least the
// aggregate stake
func StakeVaultSolvencyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		params, err := k.GetParams(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "stake-vault-solvency", err.Error()), true
		}
		global, _ := globalOrEmpty(ctx, k)

		balance := k.bankKeeper.GetBalance(ctx, authtypes.NewModuleAddress(types.StakeVaultName), params.StakeDenom)
		broken := balance.Amount.BigInt().Cmp(new(big.Int).SetUint64(global.TotalStaked)) < 0
		return sdk.FormatInvariant(
			types.ModuleName, "stake-vault-solvency",
			fmt.Sprintf("stake vault balance %s, total staked %d", balance, global.TotalStaked),
		), broken
	}
}

// LiquidityVaultSolvencyInvariant checks the liquidity vault holds every
// transferred deposit. Priority pool bonuses are credited, not transferred.
func LiquidityVaultSolvencyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		params, err := k.GetParams(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "liquidity-vault-solvency", err.Error()), true
		}

		deposited := new(big.Int)
		err = k.IterateLiquidityAccounts(ctx, func(acct types.LiquidityAccount) bool {
			deposited.Add(deposited, new(big.Int).SetUint64(acct.Deposited()))
			return false
		})
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "liquidity-vault-solvency", err.Error()), true
		}

		balance := k.bankKeeper.GetBalance(ctx, authtypes.NewModuleAddress(types.LiquidityVaultName), params.StakeDenom)
		broken := balance.Amount.BigInt().Cmp(deposited) < 0
		return sdk.FormatInvariant(
			types.ModuleName, "liquidity-vault-solvency",
			fmt.Sprintf("liquidity vault balance %s, deposits %s", balance, deposited),
		), broken
	}
}

// StrikeBoundInvariant checks no trader carries MaxInvalidProofs or more strikes
func StrikeBoundInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		params, err := k.GetParams(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "strike-bound", err.Error()), true
		}

		var (
			msg   string
			count int
		)
		err = k.IterateTraderAccounts(ctx, func(acct types.TraderAccount) bool {
			if acct.InvalidProofAttempts >= params.MaxInvalidProofs {
				count++
				msg += fmt.Sprintf("trader %s: %d strikes, max %d\n", acct.Owner, acct.InvalidProofAttempts, params.MaxInvalidProofs)
			}
			return false
		})
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "strike-bound", err.Error()), true
		}

		return sdk.FormatInvariant(
			types.ModuleName, "strike-bound",
			fmt.Sprintf("found %d traders over the strike bound\n%s", count, msg),
		), count != 0
	}
}

func globalOrEmpty(ctx sdk.Context, k Keeper) (types.GlobalState, bool) {
	global, err := k.GetGlobalState(ctx)
	if err != nil {
		return types.GlobalState{}, false
	}
	return global, true
}

package keeper

import (
	"context"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// penalize records one invalid submission against trader. When allowSlash is
// set and the strike count reaches MaxInvalidProofs, SlashPercentage of the
// stake is forfeited to the fee collector and the count resets to zero.
// Without allowSlash the count saturates one below the threshold.
//
// The penalty is written to ctx directly, so it persists even though the
// calling operation goes on to fail.
func (k Keeper) penalize(ctx context.Context, trader sdk.AccAddress, kind types.FailureKind, allowSlash bool) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		params, err := k.GetParams(ctx)
		if err != nil {
			return err
		}
		global, err := k.GetGlobalState(ctx)
		if err != nil {
			return err
		}
		acct, err := k.GetTraderAccount(ctx, trader)
		if err != nil {
			return err
		}

		attempts, err := SafeIncrementUint32(acct.InvalidProofAttempts)
		if err != nil {
			return err
		}
		if !allowSlash && attempts >= params.MaxInvalidProofs {
			attempts = params.MaxInvalidProofs - 1
		}
		acct.InvalidProofAttempts = attempts

		k.metrics.PenaltiesTotal.WithLabelValues(kind.String()).Inc()
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeProofRejected,
				sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
				sdk.NewAttribute(types.AttributeKeyReason, kind.String()),
				sdk.NewAttribute(types.AttributeKeyAttempts, strconv.FormatUint(uint64(attempts), 10)),
			),
		)

		if allowSlash && attempts >= params.MaxInvalidProofs {
			if err := k.slash(ctx, params, &acct, &global, trader, kind); err != nil {
				return err
			}
			if err := k.SetGlobalState(ctx, global); err != nil {
				return err
			}
		}

		return k.SetTraderAccount(ctx, acct)
	})
}

// slash forfeits SlashPercentage of the account's stake and resets its strikes.
func (k Keeper) slash(ctx sdk.Context, params types.Params, acct *types.TraderAccount, global *types.GlobalState, trader sdk.AccAddress, kind types.FailureKind) error {
	amount, err := SafePercent(acct.StakedAmount, params.SlashPercentage)
	if err != nil {
		return err
	}
	newStake, err := SafeSubUint64(acct.StakedAmount, amount)
	if err != nil {
		return err
	}
	newTotal, err := SafeSubUint64(global.TotalStaked, amount)
	if err != nil {
		return err
	}
	if err := k.moveBetweenVaults(ctx, types.StakeVaultName, types.FeeCollectorName, params.StakeDenom, amount); err != nil {
		return err
	}

	slashID, err := k.recordSlash(ctx, trader, amount, acct.StakedAmount, kind)
	if err != nil {
		return err
	}

	acct.StakedAmount = newStake
	acct.InvalidProofAttempts = 0
	global.TotalStaked = newTotal

	k.metrics.SlashesTotal.Inc()
	k.metrics.SlashedAmount.Add(float64(amount))
	k.metrics.observeTotals(globalTotals{staked: global.TotalStaked, liquidity: global.TotalLiquidity})

	k.Logger(ctx).Info("trader slashed",
		"trader", trader.String(),
		"amount", amount,
		"reason", kind.String(),
		"slash_id", slashID,
	)
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeTraderSlashed,
			sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
			sdk.NewAttribute(types.AttributeKeyAmount, strconv.FormatUint(amount, 10)),
			sdk.NewAttribute(types.AttributeKeyReason, kind.String()),
			sdk.NewAttribute(types.AttributeKeySlashID, strconv.FormatUint(slashID, 10)),
		),
	)
	return nil
}

package keeper

import (
	"context"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// Stake moves amount from the trader into the stake vault and credits the
// trader's stake and the aggregate. It returns the new stake.
func (k Keeper) Stake(ctx context.Context, trader sdk.AccAddress, amount uint64) (uint64, error) {
	var staked uint64
	err := k.atomically(ctx, func(ctx sdk.Context) error {
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

		if err := k.addStake(ctx, params, &acct, &global, trader, amount); err != nil {
			return err
		}

		if err := k.SetTraderAccount(ctx, acct); err != nil {
			return err
		}
		if err := k.SetGlobalState(ctx, global); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeTraderStaked,
				sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, strconv.FormatUint(amount, 10)),
				sdk.NewAttribute(types.AttributeKeyStakedAmount, strconv.FormatUint(acct.StakedAmount, 10)),
			),
		)
		k.metrics.observeTotals(globalTotals{staked: global.TotalStaked, liquidity: global.TotalLiquidity})
		staked = acct.StakedAmount
		return nil
	})
	k.metrics.observeOperation("stake", err)
	return staked, err
}

// addStake transfers amount into the stake vault and applies it to acct and
// global. Both sums are checked before the transfer.
func (k Keeper) addStake(ctx sdk.Context, params types.Params, acct *types.TraderAccount, global *types.GlobalState, trader sdk.AccAddress, amount uint64) error {
	newStake, err := SafeAddUint64(acct.StakedAmount, amount)
	if err != nil {
		return err
	}
	newTotal, err := SafeAddUint64(global.TotalStaked, amount)
	if err != nil {
		return err
	}
	if err := k.depositToVault(ctx, trader, types.StakeVaultName, params.StakeDenom, amount); err != nil {
		return err
	}
	acct.StakedAmount = newStake
	acct.LastStakeTimestamp = blockTime(ctx)
	global.TotalStaked = newTotal
	return nil
}

// Unstake returns amount from the stake vault once the lockup measured from
// the last stake has elapsed.
func (k Keeper) Unstake(ctx context.Context, trader sdk.AccAddress, amount uint64) error {
	err := k.atomically(ctx, func(ctx sdk.Context) error {
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

		now := blockTime(ctx)
		unlockAt, err := SafeAddInt64(acct.LastStakeTimestamp, params.LockupPeriod)
		if err != nil {
			return err
		}
		if now < unlockAt {
			return types.ErrLockupPeriodNotElapsed.Wrapf("unlocks at %d, now %d", unlockAt, now)
		}
		if amount > acct.StakedAmount {
			return types.ErrInsufficientStake.Wrapf("requested %d, staked %d", amount, acct.StakedAmount)
		}

		newTotal, err := SafeSubUint64(global.TotalStaked, amount)
		if err != nil {
			return err
		}
		if err := k.withdrawFromVault(ctx, types.StakeVaultName, trader, params.StakeDenom, amount); err != nil {
			return err
		}

		acct.StakedAmount -= amount
		global.TotalStaked = newTotal

		if err := k.SetTraderAccount(ctx, acct); err != nil {
			return err
		}
		if err := k.SetGlobalState(ctx, global); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeTraderUnstaked,
				sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, strconv.FormatUint(amount, 10)),
				sdk.NewAttribute(types.AttributeKeyStakedAmount, strconv.FormatUint(acct.StakedAmount, 10)),
			),
		)
		k.metrics.observeTotals(globalTotals{staked: global.TotalStaked, liquidity: global.TotalLiquidity})
		return nil
	})
	k.metrics.observeOperation("unstake", err)
	return err
}

package keeper

import (
	"context"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// ProvideLiquidity deposits amount into the liquidity vault. Every deposit
// waits out LiquidityLockPeriod from the account's lock timestamp, which is
// set when the account opens and never moves afterwards. Priority pool
// accounts are credited a bonus on top of the deposit.
func (k Keeper) ProvideLiquidity(ctx context.Context, provider sdk.AccAddress, amount, tradeVolume uint64) (types.MsgProvideLiquidityResponse, error) {
	var resp types.MsgProvideLiquidityResponse
	err := k.atomically(ctx, func(ctx sdk.Context) error {
		params, err := k.GetParams(ctx)
		if err != nil {
			return err
		}
		global, err := k.GetGlobalState(ctx)
		if err != nil {
			return err
		}
		acct, err := k.GetLiquidityAccount(ctx, provider)
		if err != nil {
			return err
		}

		now := blockTime(ctx)
		unlockAt, err := SafeAddInt64(acct.LockTimestamp, params.LiquidityLockPeriod)
		if err != nil {
			return err
		}
		if now < unlockAt {
			return types.ErrLiquidityLockNotElapsed.Wrapf("unlocks at %d, now %d", unlockAt, now)
		}

		var bonus uint64
		if acct.IsPriorityPool {
			bonus, err = SafePercent(amount, params.PriorityPoolBonus)
			if err != nil {
				return err
			}
		}
		deposit, err := SafeAddUint64(amount, bonus)
		if err != nil {
			return err
		}
		provided, err := SafeAddUint64(acct.LiquidityProvided, deposit)
		if err != nil {
			return err
		}
		reward, err := SafeAddUint64(acct.RewardBalance, bonus)
		if err != nil {
			return err
		}
		volume, err := SafeAddUint64(acct.TradeVolume, tradeVolume)
		if err != nil {
			return err
		}
		total, err := SafeAddUint64(global.TotalLiquidity, deposit)
		if err != nil {
			return err
		}

		if err := k.depositToVault(ctx, provider, types.LiquidityVaultName, params.StakeDenom, amount); err != nil {
			return err
		}

		acct.LiquidityProvided = provided
		acct.RewardBalance = reward
		acct.TradeVolume = volume
		global.TotalLiquidity = total

		if err := k.SetLiquidityAccount(ctx, acct); err != nil {
			return err
		}
		if err := k.SetGlobalState(ctx, global); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeLiquidityProvided,
				sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
				sdk.NewAttribute(types.AttributeKeyAmount, strconv.FormatUint(amount, 10)),
				sdk.NewAttribute(types.AttributeKeyBonus, strconv.FormatUint(bonus, 10)),
				sdk.NewAttribute(types.AttributeKeyTradeVolume, strconv.FormatUint(tradeVolume, 10)),
			),
		)
		k.metrics.BonusesPaid.Add(float64(bonus))
		k.metrics.observeTotals(globalTotals{staked: global.TotalStaked, liquidity: global.TotalLiquidity})

		resp = types.MsgProvideLiquidityResponse{Bonus: bonus, LiquidityProvided: acct.LiquidityProvided}
		return nil
	})
	k.metrics.observeOperation("provide_liquidity", err)
	if err != nil {
		return types.MsgProvideLiquidityResponse{}, err
	}
	return resp, nil
}

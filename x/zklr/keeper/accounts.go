package keeper

import (
	"context"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// Initialize sets the administrator and zeroes both aggregate counters.
// Callers that require one-time semantics check HasGlobalState first.
func (k Keeper) Initialize(ctx context.Context, admin sdk.AccAddress) error {
	err := k.atomically(ctx, func(ctx sdk.Context) error {
		global := types.GlobalState{Admin: admin.String()}
		if err := k.SetGlobalState(ctx, global); err != nil {
			return err
		}
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeGlobalInitialized,
				sdk.NewAttribute(types.AttributeKeyAdmin, admin.String()),
			),
		)
		k.metrics.observeTotals(globalTotals{})
		return nil
	})
	k.metrics.observeOperation("initialize", err)
	return err
}

// OpenTraderAccount provisions an empty trader account for trader. The
// module must be initialized.
func (k Keeper) OpenTraderAccount(ctx context.Context, trader sdk.AccAddress) error {
	err := k.atomically(ctx, func(ctx sdk.Context) error {
		if !k.HasGlobalState(ctx) {
			return types.ErrNotInitialized
		}
		if k.HasTraderAccount(ctx, trader) {
			return types.ErrAccountExists.Wrapf("trader %s", trader)
		}
		if err := k.SetTraderAccount(ctx, types.NewTraderAccount(trader.String())); err != nil {
			return err
		}
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeAccountOpened,
				sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
				sdk.NewAttribute(types.AttributeKeyAccountKind, "trader"),
			),
		)
		return nil
	})
	k.metrics.observeOperation("open_trader_account", err)
	return err
}

// OpenLiquidityAccount provisions a liquidity account. Its lock window
// starts at the current block time.
func (k Keeper) OpenLiquidityAccount(ctx context.Context, provider sdk.AccAddress, priorityPool bool) error {
	err := k.atomically(ctx, func(ctx sdk.Context) error {
		if !k.HasGlobalState(ctx) {
			return types.ErrNotInitialized
		}
		if k.HasLiquidityAccount(ctx, provider) {
			return types.ErrAccountExists.Wrapf("liquidity provider %s", provider)
		}
		acct := types.NewLiquidityAccount(provider.String(), priorityPool, blockTime(ctx))
		if err := k.SetLiquidityAccount(ctx, acct); err != nil {
			return err
		}
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeAccountOpened,
				sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
				sdk.NewAttribute(types.AttributeKeyAccountKind, "liquidity"),
				sdk.NewAttribute("priority_pool", strconv.FormatBool(priorityPool)),
			),
		)
		return nil
	})
	k.metrics.observeOperation("open_liquidity_account", err)
	return err
}

package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

func coinsOf(denom string, amount uint64) sdk.Coins {
	return sdk.NewCoins(sdk.NewCoin(denom, math.NewIntFromUint64(amount)))
}

// depositToVault moves amount from a participant into a module vault
func (k Keeper) depositToVault(ctx context.Context, from sdk.AccAddress, vault, denom string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, from, vault, coinsOf(denom, amount)); err != nil {
		return types.ErrTransferFailed.Wrapf("deposit %d%s from %s to %s: %v", amount, denom, from, vault, err)
	}
	return nil
}

// withdrawFromVault moves amount from a module vault back to a participant
func (k Keeper) withdrawFromVault(ctx context.Context, vault string, to sdk.AccAddress, denom string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, vault, to, coinsOf(denom, amount)); err != nil {
		return types.ErrTransferFailed.Wrapf("withdraw %d%s from %s to %s: %v", amount, denom, vault, to, err)
	}
	return nil
}

// moveBetweenVaults moves amount between two module vaults
func (k Keeper) moveBetweenVaults(ctx context.Context, from, to, denom string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := k.bankKeeper.SendCoinsFromModuleToModule(ctx, from, to, coinsOf(denom, amount)); err != nil {
		return types.ErrTransferFailed.Wrapf("move %d%s from %s to %s: %v", amount, denom, from, to, err)
	}
	return nil
}

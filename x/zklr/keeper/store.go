package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// HasGlobalState reports whether Initialize has run
func (k Keeper) HasGlobalState(ctx context.Context) bool {
	return k.getStore(ctx).Has(types.GlobalStateKey)
}

// GetGlobalState returns the global aggregate
func (k Keeper) GetGlobalState(ctx context.Context) (types.GlobalState, error) {
	bz := k.getStore(ctx).Get(types.GlobalStateKey)
	if bz == nil {
		return types.GlobalState{}, types.ErrNotInitialized
	}
	var gs types.GlobalState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return types.GlobalState{}, fmt.Errorf("GetGlobalState: unmarshal: %w", err)
	}
	return gs, nil
}

// SetGlobalState stores the global aggregate
func (k Keeper) SetGlobalState(ctx context.Context, gs types.GlobalState) error {
	bz, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("SetGlobalState: marshal: %w", err)
	}
	k.getStore(ctx).Set(types.GlobalStateKey, bz)
	return nil
}

// HasTraderAccount reports whether a trader account exists
func (k Keeper) HasTraderAccount(ctx context.Context, trader sdk.AccAddress) bool {
	return k.getStore(ctx).Has(types.TraderAccountKey(trader))
}

// GetTraderAccount retrieves a trader account
func (k Keeper) GetTraderAccount(ctx context.Context, trader sdk.AccAddress) (types.TraderAccount, error) {
	bz := k.getStore(ctx).Get(types.TraderAccountKey(trader))
	if bz == nil {
		return types.TraderAccount{}, types.ErrAccountNotFound.Wrapf("trader %s", trader)
	}
	var acct types.TraderAccount
	if err := json.Unmarshal(bz, &acct); err != nil {
		return types.TraderAccount{}, fmt.Errorf("GetTraderAccount: unmarshal: %w", err)
	}
	return acct, nil
}

// SetTraderAccount stores a trader account under its owner
func (k Keeper) SetTraderAccount(ctx context.Context, acct types.TraderAccount) error {
	owner, err := sdk.AccAddressFromBech32(acct.Owner)
	if err != nil {
		return types.ErrInvalidAddress.Wrapf("trader owner %q: %v", acct.Owner, err)
	}
	bz, err := json.Marshal(acct)
	if err != nil {
		return fmt.Errorf("SetTraderAccount: marshal: %w", err)
	}
	k.getStore(ctx).Set(types.TraderAccountKey(owner), bz)
	return nil
}

// HasLiquidityAccount reports whether a liquidity account exists
func (k Keeper) HasLiquidityAccount(ctx context.Context, provider sdk.AccAddress) bool {
	return k.getStore(ctx).Has(types.LiquidityAccountKey(provider))
}

// GetLiquidityAccount retrieves a liquidity account
func (k Keeper) GetLiquidityAccount(ctx context.Context, provider sdk.AccAddress) (types.LiquidityAccount, error) {
	bz := k.getStore(ctx).Get(types.LiquidityAccountKey(provider))
	if bz == nil {
		return types.LiquidityAccount{}, types.ErrAccountNotFound.Wrapf("liquidity provider %s", provider)
	}
	var acct types.LiquidityAccount
	if err := json.Unmarshal(bz, &acct); err != nil {
		return types.LiquidityAccount{}, fmt.Errorf("GetLiquidityAccount: unmarshal: %w", err)
	}
	return acct, nil
}

// SetLiquidityAccount stores a liquidity account under its owner
func (k Keeper) SetLiquidityAccount(ctx context.Context, acct types.LiquidityAccount) error {
	owner, err := sdk.AccAddressFromBech32(acct.Owner)
	if err != nil {
		return types.ErrInvalidAddress.Wrapf("liquidity owner %q: %v", acct.Owner, err)
	}
	bz, err := json.Marshal(acct)
	if err != nil {
		return fmt.Errorf("SetLiquidityAccount: marshal: %w", err)
	}
	k.getStore(ctx).Set(types.LiquidityAccountKey(owner), bz)
	return nil
}

// IterateTraderAccounts calls cb for every trader account until cb returns true
func (k Keeper) IterateTraderAccounts(ctx context.Context, cb func(acct types.TraderAccount) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, types.TraderAccountKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var acct types.TraderAccount
		if err := json.Unmarshal(iterator.Value(), &acct); err != nil {
			return fmt.Errorf("IterateTraderAccounts: unmarshal: %w", err)
		}
		if cb(acct) {
			break
		}
	}
	return nil
}

// IterateLiquidityAccounts calls cb for every liquidity account until cb returns true
func (k Keeper) IterateLiquidityAccounts(ctx context.Context, cb func(acct types.LiquidityAccount) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, types.LiquidityAccountKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var acct types.LiquidityAccount
		if err := json.Unmarshal(iterator.Value(), &acct); err != nil {
			return fmt.Errorf("IterateLiquidityAccounts: unmarshal: %w", err)
		}
		if cb(acct) {
			break
		}
	}
	return nil
}

// GetAllTraderAccounts returns every trader account
func (k Keeper) GetAllTraderAccounts(ctx context.Context) ([]types.TraderAccount, error) {
	var accounts []types.TraderAccount
	err := k.IterateTraderAccounts(ctx, func(acct types.TraderAccount) bool {
		accounts = append(accounts, acct)
		return false
	})
	return accounts, err
}

// GetAllLiquidityAccounts returns every liquidity account
func (k Keeper) GetAllLiquidityAccounts(ctx context.Context) ([]types.LiquidityAccount, error) {
	var accounts []types.LiquidityAccount
	err := k.IterateLiquidityAccounts(ctx, func(acct types.LiquidityAccount) bool {
		accounts = append(accounts, acct)
		return false
	})
	return accounts, err
}

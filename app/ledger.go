package app

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authcodec "github.com/cosmos/cosmos-sdk/x/auth/codec"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// module account permissions. The zklr module account mints faucet and
// genesis funds; the vaults only hold and move coins.
var maccPerms = map[string][]string{
	types.ModuleName:         {authtypes.Minter},
	types.StakeVaultName:     nil,
	types.LiquidityVaultName: nil,
	types.FeeCollectorName:   nil,
}

// ModuleAccountAddrs returns all the module account addresses
func ModuleAccountAddrs() map[string]bool {
	modAccAddrs := make(map[string]bool)
	for acc := range maccPerms {
		modAccAddrs[authtypes.NewModuleAddress(acc).String()] = true
	}
	return modAccAddrs
}

// BlockedModuleAccountAddrs returns the module accounts that may not receive
// coins from module-to-account sends
func BlockedModuleAccountAddrs() map[string]bool {
	return ModuleAccountAddrs()
}

// LedgerKeys are the auth and bank stores backing a Ledger
type LedgerKeys struct {
	Auth *storetypes.KVStoreKey
	Bank *storetypes.KVStoreKey
}

// NewLedgerKeys returns fresh auth and bank store keys
func NewLedgerKeys() LedgerKeys {
	return LedgerKeys{
		Auth: storetypes.NewKVStoreKey(authtypes.StoreKey),
		Bank: storetypes.NewKVStoreKey(banktypes.StoreKey),
	}
}

// Mount mounts the ledger stores on cms
func (k LedgerKeys) Mount(cms storetypes.CommitMultiStore) {
	cms.MountStoreWithDB(k.Auth, storetypes.StoreTypeIAVL, nil)
	cms.MountStoreWithDB(k.Bank, storetypes.StoreTypeIAVL, nil)
}

// Ledger holds participant and vault balances in the x/bank keeper. Balances
// live in the same multistore as module state, so a transfer made on a
// cached branch is discarded together with the branch.
type Ledger struct {
	bankKeeper bankkeeper.BaseKeeper

	// module account address -> module name
	modules map[string]string
}

var _ types.BankKeeper = Ledger{}

// NewLedger wires an account keeper and a bank keeper over keys
func NewLedger(keys LedgerKeys, logger log.Logger) Ledger {
	registry := codectypes.NewInterfaceRegistry()
	authtypes.RegisterInterfaces(registry)
	banktypes.RegisterInterfaces(registry)
	appCodec := codec.NewProtoCodec(registry)

	prefix := sdk.GetConfig().GetBech32AccountAddrPrefix()
	authority := authtypes.NewModuleAddress(types.ModuleName).String()

	accountKeeper := authkeeper.NewAccountKeeper(
		appCodec, runtime.NewKVStoreService(keys.Auth), authtypes.ProtoBaseAccount, maccPerms,
		authcodec.NewBech32Codec(prefix), prefix, authority,
	)
	bankKeeper := bankkeeper.NewBaseKeeper(
		appCodec, runtime.NewKVStoreService(keys.Bank), accountKeeper, BlockedModuleAccountAddrs(), authority, logger,
	)

	modules := make(map[string]string, len(maccPerms))
	for name := range maccPerms {
		modules[authtypes.NewModuleAddress(name).String()] = name
	}

	return Ledger{
		bankKeeper: bankKeeper,
		modules:    modules,
	}
}

// InitParams stores the default bank parameters
func (l Ledger) InitParams(ctx context.Context) error {
	return l.bankKeeper.SetParams(ctx, banktypes.DefaultParams())
}

// IterateBalances calls cb for every non-zero balance until cb returns true
func (l Ledger) IterateBalances(ctx context.Context, cb func(addr sdk.AccAddress, coin sdk.Coin) (stop bool)) error {
	l.bankKeeper.IterateAllBalances(ctx, cb)
	return nil
}

// GetBalance returns addr's balance of denom
func (l Ledger) GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return l.bankKeeper.GetBalance(ctx, addr, denom)
}

// ModuleBalance returns a module vault's balance of denom
func (l Ledger) ModuleBalance(ctx context.Context, module, denom string) sdk.Coin {
	return l.GetBalance(ctx, authtypes.NewModuleAddress(module), denom)
}

// Mint mints coins to the zklr module account and sends them to addr. A
// module account address is credited as that module. Used by faucets and
// genesis.
func (l Ledger) Mint(ctx context.Context, addr sdk.AccAddress, coins sdk.Coins) error {
	if !coins.IsValid() {
		return fmt.Errorf("invalid coins %s", coins)
	}
	if err := l.bankKeeper.MintCoins(ctx, types.ModuleName, coins); err != nil {
		return err
	}
	if module, ok := l.modules[addr.String()]; ok {
		return l.bankKeeper.SendCoinsFromModuleToModule(ctx, types.ModuleName, module, coins)
	}
	return l.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, addr, coins)
}

func (l Ledger) SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	return l.bankKeeper.SendCoinsFromAccountToModule(ctx, senderAddr, recipientModule, amt)
}

func (l Ledger) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	return l.bankKeeper.SendCoinsFromModuleToAccount(ctx, senderModule, recipientAddr, amt)
}

func (l Ledger) SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error {
	return l.bankKeeper.SendCoinsFromModuleToModule(ctx, senderModule, recipientModule, amt)
}

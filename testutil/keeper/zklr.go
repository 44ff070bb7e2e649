package keeper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/zklr-network/zklr/app"
	"github.com/zklr-network/zklr/x/zklr/keeper"
	"github.com/zklr-network/zklr/x/zklr/types"
)

// GenesisTime is the block time of contexts returned by ZklrKeeper
var GenesisTime = time.Unix(1_700_000_000, 0).UTC()

// ErrInjectedTransfer is returned by BankKeeper when FailTransfers is set
var ErrInjectedTransfer = errors.New("injected transfer failure")

// BankKeeper wraps the x/bank ledger with transfer failure injection
type BankKeeper struct {
	app.Ledger

	// FailTransfers makes every send fail without moving funds
	FailTransfers bool
}

var _ types.BankKeeper = (*BankKeeper)(nil)

func (b *BankKeeper) SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	if b.FailTransfers {
		return ErrInjectedTransfer
	}
	return b.Ledger.SendCoinsFromAccountToModule(ctx, senderAddr, recipientModule, amt)
}

func (b *BankKeeper) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	if b.FailTransfers {
		return ErrInjectedTransfer
	}
	return b.Ledger.SendCoinsFromModuleToAccount(ctx, senderModule, recipientAddr, amt)
}

func (b *BankKeeper) SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error {
	if b.FailTransfers {
		return ErrInjectedTransfer
	}
	return b.Ledger.SendCoinsFromModuleToModule(ctx, senderModule, recipientModule, amt)
}

// Fund mints amount of the default stake denom to addr
func (b *BankKeeper) Fund(t testing.TB, ctx sdk.Context, addr sdk.AccAddress, amount uint64) {
	t.Helper()
	coins := sdk.NewCoins(sdk.NewCoin(types.DefaultStakeDenom, math.NewIntFromUint64(amount)))
	require.NoError(t, b.Mint(ctx, addr, coins))
}

// Balance returns addr's balance of the default stake denom
func (b *BankKeeper) Balance(ctx sdk.Context, addr sdk.AccAddress) math.Int {
	return b.GetBalance(ctx, addr, types.DefaultStakeDenom).Amount
}

// VaultBalance returns a module vault's balance of the default stake denom
func (b *BankKeeper) VaultBalance(ctx sdk.Context, module string) math.Int {
	return b.ModuleBalance(ctx, module, types.DefaultStakeDenom).Amount
}

// ZklrKeeper creates a test keeper for the zklr module backed by the bank
// ledger. The returned context carries GenesisTime as its block time.
func ZklrKeeper(t testing.TB, opts ...keeper.Option) (*keeper.Keeper, sdk.Context, *BankKeeper) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	ledgerKeys := app.NewLedgerKeys()

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	ledgerKeys.Mount(stateStore)
	require.NoError(t, stateStore.LoadLatestVersion())

	bank := &BankKeeper{Ledger: app.NewLedger(ledgerKeys, log.NewNopLogger())}
	k := keeper.NewKeeper(storeKey, bank, opts...)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger()).
		WithBlockTime(GenesisTime)

	require.NoError(t, bank.InitParams(ctx))
	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return k, ctx, bank
}

// InitializedKeeper returns a keeper whose global state has been initialized
// with TestAddr(0) as admin.
func InitializedKeeper(t testing.TB, opts ...keeper.Option) (*keeper.Keeper, sdk.Context, *BankKeeper) {
	k, ctx, bank := ZklrKeeper(t, opts...)
	require.NoError(t, k.Initialize(ctx, TestAddr(0)))
	return k, ctx, bank
}

// TestAddr returns a deterministic 20-byte account address for index i
func TestAddr(i int) sdk.AccAddress {
	return sdk.AccAddress(fmt.Sprintf("zklr-test-addr-%05d", i))
}

// FundedTrader opens a trader account for addr and funds it with balance
func FundedTrader(t testing.TB, k *keeper.Keeper, ctx sdk.Context, bank *BankKeeper, addr sdk.AccAddress, balance uint64) {
	t.Helper()
	require.NoError(t, k.OpenTraderAccount(ctx, addr))
	bank.Fund(t, ctx, addr, balance)
}

// FundedProvider opens a liquidity account for addr and funds it with balance
func FundedProvider(t testing.TB, k *keeper.Keeper, ctx sdk.Context, bank *BankKeeper, addr sdk.AccAddress, priorityPool bool, balance uint64) {
	t.Helper()
	require.NoError(t, k.OpenLiquidityAccount(ctx, addr, priorityPool))
	bank.Fund(t, ctx, addr, balance)
}

package app

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/zklr-network/zklr/x/zklr/types"
)

var (
	adminAddr    = sdk.AccAddress("engine-test-admin-01").String()
	traderAddr   = sdk.AccAddress("engine-test-trader-1").String()
	providerAddr = sdk.AccAddress("engine-test-lp-00001").String()

	validProof = []byte("0123456789")
	testOrder  = []byte("buy 10 @ 42")
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEngine(t *testing.T, db dbm.DB, genesis *GenesisState) (*Engine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	e, err := NewEngine(log.NewNopLogger(), db, genesis, WithClock(clock.Now), WithInvariantChecks(true))
	require.NoError(t, err)
	return e, clock
}

func orderCommitment(t *testing.T) types.Digest {
	t.Helper()
	d, err := types.ComputeOrderCommitment(types.HashSHA256, testOrder)
	require.NoError(t, err)
	return d
}

func setupTrader(t *testing.T, e *Engine, stake uint64) {
	t.Helper()
	ctx := context.Background()
	_, err := e.Initialize(ctx, types.MsgInitialize{Admin: adminAddr})
	require.NoError(t, err)
	_, err = e.OpenTraderAccount(ctx, types.MsgOpenTraderAccount{Trader: traderAddr})
	require.NoError(t, err)
	_, err = e.Mint(ctx, traderAddr, stake)
	require.NoError(t, err)
	_, err = e.Stake(ctx, types.MsgStake{Trader: traderAddr, Amount: stake})
	require.NoError(t, err)
}

func TestEngine_FullTradeCycle(t *testing.T) {
	ctx := context.Background()
	e, clock := newTestEngine(t, dbm.NewMemDB(), nil)
	startHeight := e.Height()

	setupTrader(t, e, 1_000)
	require.Equal(t, startHeight+4, e.Height())

	verify, err := e.VerifyPriority(ctx, types.MsgVerifyPriority{
		Trader:     traderAddr,
		Proof:      validProof,
		Commitment: orderCommitment(t),
		Latency:    0,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(10), verify.Fee)

	trader, err := e.Trader(ctx, types.QueryTraderRequest{Trader: traderAddr})
	require.NoError(t, err)
	require.Equal(t, "committed", trader.Status)

	_, err = e.RevealTrade(ctx, types.MsgRevealTrade{Trader: traderAddr, Order: testOrder, OrderRangeProof: validProof})
	require.ErrorIs(t, err, types.ErrRevealTooEarly)

	clock.Advance(30 * time.Second)
	_, err = e.RevealTrade(ctx, types.MsgRevealTrade{Trader: traderAddr, Order: testOrder, OrderRangeProof: validProof})
	require.NoError(t, err)

	trader, err = e.Trader(ctx, types.QueryTraderRequest{Trader: traderAddr})
	require.NoError(t, err)
	require.Equal(t, "verified", trader.Status)

	alloc, err := e.AllocateBandwidth(ctx, traderAddr)
	require.NoError(t, err)
	require.Positive(t, alloc.EffectivePriority)

	vaults, err := e.VaultBalances(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(990), vaults[types.StakeVaultName].Amount.Int64())
	require.Equal(t, int64(10), vaults[types.FeeCollectorName].Amount.Int64())

	require.NoError(t, e.CheckInvariants(ctx))
}

func TestEngine_RejectedProofPenaltyPersists(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, dbm.NewMemDB(), nil)
	setupTrader(t, e, 1_000)

	height := e.Height()
	_, err := e.VerifyPriority(ctx, types.MsgVerifyPriority{Trader: traderAddr, Proof: []byte("short")})
	require.ErrorIs(t, err, types.ErrInvalidProof)
	require.Equal(t, height+1, e.Height())

	trader, err := e.Trader(ctx, types.QueryTraderRequest{Trader: traderAddr})
	require.NoError(t, err)
	require.Equal(t, uint32(1), trader.Strikes)
	require.Equal(t, uint64(1_000), trader.Account.StakedAmount)
}

func TestEngine_SlashAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, dbm.NewMemDB(), nil)
	setupTrader(t, e, 1_000)

	for i := 0; i < 3; i++ {
		_, err := e.VerifyPriority(ctx, types.MsgVerifyPriority{Trader: traderAddr, Proof: []byte("bad")})
		require.ErrorIs(t, err, types.ErrInvalidProof)
	}

	trader, err := e.Trader(ctx, types.QueryTraderRequest{Trader: traderAddr})
	require.NoError(t, err)
	require.Equal(t, uint64(800), trader.Account.StakedAmount)
	require.Zero(t, trader.Strikes)

	records, err := e.SlashRecords(ctx, types.QuerySlashRecordsRequest{Trader: traderAddr})
	require.NoError(t, err)
	require.Len(t, records.Records, 1)
	require.Equal(t, uint64(200), records.Records[0].Amount)

	global, err := e.GlobalState(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(800), global.Global.TotalStaked)
}

func TestEngine_FailedOperationLeavesNoState(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, dbm.NewMemDB(), nil)
	setupTrader(t, e, 1_000)

	_, err := e.Stake(ctx, types.MsgStake{Trader: traderAddr, Amount: 1})
	require.Error(t, err)

	global, err := e.GlobalState(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), global.Global.TotalStaked)

	balance, err := e.Balance(ctx, traderAddr)
	require.NoError(t, err)
	require.True(t, balance.Amount.IsZero())
}

func TestEngine_InitializeOnlyOnce(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, dbm.NewMemDB(), nil)

	_, err := e.Initialize(ctx, types.MsgInitialize{Admin: adminAddr})
	require.NoError(t, err)
	_, err = e.Initialize(ctx, types.MsgInitialize{Admin: traderAddr})
	require.ErrorIs(t, err, types.ErrAlreadyInitialized)

	global, err := e.GlobalState(ctx)
	require.NoError(t, err)
	require.Equal(t, adminAddr, global.Global.Admin)
}

func TestEngine_UpdateParamsRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, dbm.NewMemDB(), nil)
	setupTrader(t, e, 100)

	params := types.DefaultParams()
	params.RevealDelay = 5

	_, err := e.UpdateParams(ctx, types.MsgUpdateParams{Authority: traderAddr, Params: params})
	require.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = e.UpdateParams(ctx, types.MsgUpdateParams{Authority: adminAddr, Params: params})
	require.NoError(t, err)

	got, err := e.Params(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), got.Params.RevealDelay)
}

func TestEngine_StatePersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := dbm.NewGoLevelDB("zklr", dir, nil)
	require.NoError(t, err)
	e, _ := newTestEngine(t, db, nil)
	setupTrader(t, e, 500)
	height := e.Height()
	require.NoError(t, e.Close())

	db, err = dbm.NewGoLevelDB("zklr", dir, nil)
	require.NoError(t, err)
	reopened, _ := newTestEngine(t, db, nil)
	defer reopened.Close()

	require.Equal(t, height, reopened.Height())
	trader, err := reopened.Trader(ctx, types.QueryTraderRequest{Trader: traderAddr})
	require.NoError(t, err)
	require.Equal(t, uint64(500), trader.Account.StakedAmount)
}

func TestEngine_GenesisRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, dbm.NewMemDB(), nil)
	setupTrader(t, e, 1_000)

	_, err := e.OpenLiquidityAccount(ctx, types.MsgOpenLiquidityAccount{Provider: providerAddr, PriorityPool: true})
	require.NoError(t, err)
	_, err = e.Mint(ctx, providerAddr, 700)
	require.NoError(t, err)
	_, err = e.ProvideLiquidity(ctx, types.MsgProvideLiquidity{Provider: providerAddr, Amount: 500, TradeVolume: 0})
	require.ErrorIs(t, err, types.ErrLiquidityLockNotElapsed)

	_, err = e.VerifyPriority(ctx, types.MsgVerifyPriority{Trader: traderAddr, Proof: validProof})
	require.NoError(t, err)

	exported, err := e.ExportGenesis(ctx)
	require.NoError(t, err)
	require.NoError(t, exported.Validate())

	imported, _ := newTestEngine(t, dbm.NewMemDB(), &exported)
	require.NoError(t, imported.CheckInvariants(ctx))

	again, err := imported.ExportGenesis(ctx)
	require.NoError(t, err)
	require.Equal(t, exported, again)

	vaults, err := imported.VaultBalances(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(990), vaults[types.StakeVaultName].Amount.Int64())

	balance, err := imported.Balance(ctx, providerAddr)
	require.NoError(t, err)
	require.Equal(t, int64(700), balance.Amount.Int64())
}

func TestEngine_RejectsInvalidGenesis(t *testing.T) {
	gs := NewDefaultGenesisState(DefaultChainID)
	gs.Zklr.Traders = append(gs.Zklr.Traders, types.NewTraderAccount(traderAddr))

	_, err := NewEngine(log.NewNopLogger(), dbm.NewMemDB(), &gs)
	require.ErrorIs(t, err, types.ErrInvalidGenesis)
}

func TestEngine_MintValidation(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, dbm.NewMemDB(), nil)

	_, err := e.Mint(ctx, "not-an-address", 10)
	require.ErrorIs(t, err, types.ErrInvalidAddress)

	_, err = e.Mint(ctx, traderAddr, 0)
	require.ErrorIs(t, err, types.ErrInvalidAmount)

	coin, err := e.Mint(ctx, traderAddr, 10)
	require.NoError(t, err)
	require.Equal(t, types.DefaultStakeDenom, coin.Denom)
	require.Equal(t, int64(10), coin.Amount.Int64())
}

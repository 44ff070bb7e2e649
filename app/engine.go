package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zklr-network/zklr/app/telemetry"
	"github.com/zklr-network/zklr/x/zklr/circuits"
	"github.com/zklr-network/zklr/x/zklr/keeper"
	"github.com/zklr-network/zklr/x/zklr/types"
)

// ErrInvariantBroken is returned when an operation would leave the store in
// a state that fails a registered invariant. The operation is discarded.
var ErrInvariantBroken = errors.New("invariant broken")

// Engine hosts the zklr keeper over a persistent multistore. Every operation
// runs against the latest committed state with the engine clock as block
// time and is committed as its own version. Operations and queries are
// serialized.
type Engine struct {
	mu sync.Mutex

	logger  log.Logger
	chainID string
	db      dbm.DB
	cms     storetypes.CommitMultiStore

	keeper      *keeper.Keeper
	ledger      Ledger
	msgServer   types.MsgServer
	queryServer types.QueryServer

	clock           func() time.Time
	checkInvariants bool
}

type engineOptions struct {
	chainID         string
	clock           func() time.Time
	keeperOpts      []keeper.Option
	checkInvariants bool
}

// EngineOption configures NewEngine
type EngineOption func(*engineOptions)

// WithClock replaces the wall clock used as block time
func WithClock(clock func() time.Time) EngineOption {
	return func(o *engineOptions) {
		o.clock = clock
	}
}

// WithChainID names the engine when genesis does not
func WithChainID(chainID string) EngineOption {
	return func(o *engineOptions) {
		o.chainID = chainID
	}
}

// WithKeeperOptions passes options through to the zklr keeper
func WithKeeperOptions(opts ...keeper.Option) EngineOption {
	return func(o *engineOptions) {
		o.keeperOpts = append(o.keeperOpts, opts...)
	}
}

// WithInvariantChecks runs every module invariant after each operation
func WithInvariantChecks(enabled bool) EngineOption {
	return func(o *engineOptions) {
		o.checkInvariants = enabled
	}
}

// NewEngine opens the multistore in db. A database with no committed
// version is initialized from genesis, which defaults to an empty state.
func NewEngine(logger log.Logger, db dbm.DB, genesis *GenesisState, opts ...EngineOption) (*Engine, error) {
	o := engineOptions{chainID: DefaultChainID, clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	zklrKey := storetypes.NewKVStoreKey(types.StoreKey)
	ledgerKeys := NewLedgerKeys()

	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	cms.MountStoreWithDB(zklrKey, storetypes.StoreTypeIAVL, nil)
	ledgerKeys.Mount(cms)
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	ledger := NewLedger(ledgerKeys, logger)
	k := keeper.NewKeeper(zklrKey, ledger, o.keeperOpts...)

	e := &Engine{
		logger:          logger.With("module", "engine"),
		chainID:         o.chainID,
		db:              db,
		cms:             cms,
		keeper:          k,
		ledger:          ledger,
		msgServer:       keeper.NewMsgServerImpl(*k),
		queryServer:     keeper.NewQueryServerImpl(*k),
		clock:           o.clock,
		checkInvariants: o.checkInvariants,
	}

	if cms.LastCommitID().Version == 0 {
		gs := NewDefaultGenesisState(o.chainID)
		if genesis != nil {
			gs = *genesis
		}
		if err := e.initChain(gs); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// NewEngineFromConfig opens the configured database, loads genesis from
// <home>/config/genesis.json when present and installs the Groth16
// verifier when enabled.
func NewEngineFromConfig(cfg Config, logger log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := cfg.OpenDB()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var genesis *GenesisState
	if _, err := os.Stat(cfg.GenesisFile()); err == nil {
		gs, err := LoadGenesis(cfg.GenesisFile())
		if err != nil {
			return nil, err
		}
		genesis = &gs
	}

	opts := []EngineOption{WithChainID(cfg.ChainID), WithInvariantChecks(cfg.CheckInvariants)}
	if cfg.ZKVerifier {
		f, err := os.Open(cfg.VerifyingKeyFile())
		if err != nil {
			return nil, fmt.Errorf("failed to open verifying key: %w", err)
		}
		defer f.Close()

		vk, err := circuits.ReadVerifyingKey(f)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithKeeperOptions(keeper.WithProofVerifierFactory(circuits.VerifierFactory(vk))))
	}

	return NewEngine(logger, db, genesis, opts...)
}

func (e *Engine) initChain(gs GenesisState) error {
	if err := gs.Validate(); err != nil {
		return types.ErrInvalidGenesis.Wrap(err.Error())
	}
	if gs.ChainID != "" {
		e.chainID = gs.ChainID
	}

	ctx := e.newContext(context.Background(), 0)
	if err := e.ledger.InitParams(ctx); err != nil {
		return fmt.Errorf("failed to set bank params: %w", err)
	}
	if err := e.keeper.InitGenesis(ctx, gs.Zklr); err != nil {
		return err
	}

	for _, b := range gs.Balances {
		addr := sdk.MustAccAddressFromBech32(b.Address)
		if err := e.ledger.Mint(ctx, addr, b.Coins); err != nil {
			return fmt.Errorf("failed to seed balance for %s: %w", b.Address, err)
		}
	}

	// vaults back the imported module totals
	denom := gs.Zklr.Params.StakeDenom
	var staked, deposited uint64
	for _, t := range gs.Zklr.Traders {
		staked += t.StakedAmount
	}
	for _, l := range gs.Zklr.LiquidityAccounts {
		deposited += l.Deposited()
	}
	if err := e.mintToModule(ctx, types.StakeVaultName, denom, staked); err != nil {
		return err
	}
	if err := e.mintToModule(ctx, types.LiquidityVaultName, denom, deposited); err != nil {
		return err
	}

	if msg, broken := keeper.AllInvariants(*e.keeper)(ctx); broken {
		return fmt.Errorf("%w: %s", ErrInvariantBroken, msg)
	}

	commitID := e.cms.Commit()
	e.logger.Info("initialized engine state", "chain_id", e.chainID, "height", commitID.Version)
	return nil
}

func (e *Engine) mintToModule(ctx sdk.Context, module, denom string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	coins := sdk.NewCoins(sdk.NewCoin(denom, math.NewIntFromUint64(amount)))
	if err := e.ledger.Mint(ctx, authtypes.NewModuleAddress(module), coins); err != nil {
		return fmt.Errorf("failed to fund %s: %w", module, err)
	}
	return nil
}

func (e *Engine) newContext(ctx context.Context, height int64) sdk.Context {
	return e.newContextWithStore(ctx, e.cms, height)
}

func (e *Engine) newContextWithStore(ctx context.Context, ms storetypes.MultiStore, height int64) sdk.Context {
	header := cmtproto.Header{
		ChainID: e.chainID,
		Height:  height,
		Time:    e.clock().UTC(),
	}
	return sdk.NewContext(ms, header, false, e.logger).WithContext(ctx)
}

// deliver runs fn on a branch of the latest state and commits the branch
// as a new version. The branch is written even when fn fails: the keeper
// only leaves state behind on failure for penalties, which must persist.
func (e *Engine) deliver(ctx context.Context, op string, fn func(sdk.Context) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	height := e.cms.LastCommitID().Version + 1
	ctx, span := telemetry.StartOperationSpan(ctx, op, height)
	defer span.End()

	branch := e.cms.CacheMultiStore()
	sdkCtx := e.newContextWithStore(ctx, branch, height)

	opErr := fn(sdkCtx)
	telemetry.AddSpanAttributes(span, attribute.Int("zklr.events", len(sdkCtx.EventManager().Events())))

	if e.checkInvariants {
		if msg, broken := keeper.AllInvariants(*e.keeper)(sdkCtx); broken {
			err := fmt.Errorf("%w: %s", ErrInvariantBroken, msg)
			e.logger.Error("discarding operation", "operation", op, "height", height, "error", err)
			telemetry.RecordError(span, err)
			return err
		}
	}

	branch.Write()
	commitID := e.cms.Commit()

	for _, ev := range sdkCtx.EventManager().Events() {
		e.logger.Debug("event", "operation", op, "height", commitID.Version, "type", ev.Type)
	}

	if opErr != nil {
		telemetry.RecordError(span, opErr)
		return opErr
	}
	telemetry.SetSpanStatus(span, true, "")
	return nil
}

// query runs fn on a read-only branch of the latest state
func (e *Engine) query(ctx context.Context, name string, fn func(sdk.Context) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, span := telemetry.StartQuerySpan(ctx, name)
	defer span.End()

	sdkCtx := e.newContextWithStore(ctx, e.cms.CacheMultiStore(), e.cms.LastCommitID().Version)
	if err := fn(sdkCtx); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

// Height returns the latest committed version
func (e *Engine) Height() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cms.LastCommitID().Version
}

// Ping reads the module params from the latest committed state
func (e *Engine) Ping(ctx context.Context) error {
	return e.query(ctx, "ping", func(sdkCtx sdk.Context) error {
		_, err := e.keeper.GetParams(sdkCtx)
		return err
	})
}

// ChainID returns the engine chain id
func (e *Engine) ChainID() string { return e.chainID }

// Close releases the database
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db.Close()
}

func (e *Engine) Initialize(ctx context.Context, msg types.MsgInitialize) (*types.MsgInitializeResponse, error) {
	var resp *types.MsgInitializeResponse
	err := e.deliver(ctx, "initialize", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.msgServer.Initialize(sdkCtx, &msg)
		return err
	})
	return resp, err
}

func (e *Engine) OpenTraderAccount(ctx context.Context, msg types.MsgOpenTraderAccount) (*types.MsgOpenTraderAccountResponse, error) {
	var resp *types.MsgOpenTraderAccountResponse
	err := e.deliver(ctx, "open_trader_account", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.msgServer.OpenTraderAccount(sdkCtx, &msg)
		return err
	})
	return resp, err
}

func (e *Engine) OpenLiquidityAccount(ctx context.Context, msg types.MsgOpenLiquidityAccount) (*types.MsgOpenLiquidityAccountResponse, error) {
	var resp *types.MsgOpenLiquidityAccountResponse
	err := e.deliver(ctx, "open_liquidity_account", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.msgServer.OpenLiquidityAccount(sdkCtx, &msg)
		return err
	})
	return resp, err
}

func (e *Engine) Stake(ctx context.Context, msg types.MsgStake) (*types.MsgStakeResponse, error) {
	var resp *types.MsgStakeResponse
	err := e.deliver(ctx, "stake", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.msgServer.Stake(sdkCtx, &msg)
		return err
	})
	return resp, err
}

func (e *Engine) VerifyPriority(ctx context.Context, msg types.MsgVerifyPriority) (*types.MsgVerifyPriorityResponse, error) {
	var resp *types.MsgVerifyPriorityResponse
	err := e.deliver(ctx, "verify_priority", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.msgServer.VerifyPriority(sdkCtx, &msg)
		return err
	})
	return resp, err
}

func (e *Engine) BatchStakeAndVerify(ctx context.Context, msg types.MsgBatchStakeAndVerify) (*types.MsgBatchStakeAndVerifyResponse, error) {
	var resp *types.MsgBatchStakeAndVerifyResponse
	err := e.deliver(ctx, "batch_stake_and_verify", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.msgServer.BatchStakeAndVerify(sdkCtx, &msg)
		return err
	})
	return resp, err
}

func (e *Engine) RevealTrade(ctx context.Context, msg types.MsgRevealTrade) (*types.MsgRevealTradeResponse, error) {
	var resp *types.MsgRevealTradeResponse
	err := e.deliver(ctx, "reveal_trade", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.msgServer.RevealTrade(sdkCtx, &msg)
		return err
	})
	return resp, err
}

func (e *Engine) Unstake(ctx context.Context, msg types.MsgUnstake) (*types.MsgUnstakeResponse, error) {
	var resp *types.MsgUnstakeResponse
	err := e.deliver(ctx, "unstake", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.msgServer.Unstake(sdkCtx, &msg)
		return err
	})
	return resp, err
}

func (e *Engine) ProvideLiquidity(ctx context.Context, msg types.MsgProvideLiquidity) (*types.MsgProvideLiquidityResponse, error) {
	var resp *types.MsgProvideLiquidityResponse
	err := e.deliver(ctx, "provide_liquidity", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.msgServer.ProvideLiquidity(sdkCtx, &msg)
		return err
	})
	return resp, err
}

func (e *Engine) UpdateParams(ctx context.Context, msg types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error) {
	var resp *types.MsgUpdateParamsResponse
	err := e.deliver(ctx, "update_params", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.msgServer.UpdateParams(sdkCtx, &msg)
		return err
	})
	return resp, err
}

// AllocateBandwidth computes the trader's bandwidth at the current clock and
// emits the allocation event.
func (e *Engine) AllocateBandwidth(ctx context.Context, trader string) (types.BandwidthAllocation, error) {
	addr, err := sdk.AccAddressFromBech32(trader)
	if err != nil {
		return types.BandwidthAllocation{}, types.ErrInvalidAddress.Wrapf("invalid trader address: %v", err)
	}
	var alloc types.BandwidthAllocation
	err = e.deliver(ctx, "allocate_bandwidth", func(sdkCtx sdk.Context) (err error) {
		alloc, err = e.keeper.AllocateBandwidth(sdkCtx, addr)
		return err
	})
	return alloc, err
}

// Mint credits an account from nothing. Development faucets only.
func (e *Engine) Mint(ctx context.Context, addr string, amount uint64) (sdk.Coin, error) {
	acc, err := sdk.AccAddressFromBech32(addr)
	if err != nil {
		return sdk.Coin{}, types.ErrInvalidAddress.Wrapf("invalid address: %v", err)
	}
	if amount == 0 {
		return sdk.Coin{}, types.ErrInvalidAmount.Wrap("amount must be positive")
	}
	var balance sdk.Coin
	err = e.deliver(ctx, "mint", func(sdkCtx sdk.Context) error {
		params, err := e.keeper.GetParams(sdkCtx)
		if err != nil {
			return err
		}
		coins := sdk.NewCoins(sdk.NewCoin(params.StakeDenom, math.NewIntFromUint64(amount)))
		if err := e.ledger.Mint(sdkCtx, acc, coins); err != nil {
			return err
		}
		balance = e.ledger.GetBalance(sdkCtx, acc, params.StakeDenom)
		return nil
	})
	return balance, err
}

// Balance returns addr's ledger balance of the stake denom
func (e *Engine) Balance(ctx context.Context, addr string) (sdk.Coin, error) {
	acc, err := sdk.AccAddressFromBech32(addr)
	if err != nil {
		return sdk.Coin{}, types.ErrInvalidAddress.Wrapf("invalid address: %v", err)
	}
	var balance sdk.Coin
	err = e.query(ctx, "balance", func(sdkCtx sdk.Context) error {
		params, err := e.keeper.GetParams(sdkCtx)
		if err != nil {
			return err
		}
		balance = e.ledger.GetBalance(sdkCtx, acc, params.StakeDenom)
		return nil
	})
	return balance, err
}

// VaultBalances returns the stake vault, liquidity vault and fee collector
// balances keyed by module account name.
func (e *Engine) VaultBalances(ctx context.Context) (map[string]sdk.Coin, error) {
	out := make(map[string]sdk.Coin, 3)
	err := e.query(ctx, "vaults", func(sdkCtx sdk.Context) error {
		params, err := e.keeper.GetParams(sdkCtx)
		if err != nil {
			return err
		}
		for _, name := range []string{types.StakeVaultName, types.LiquidityVaultName, types.FeeCollectorName} {
			out[name] = e.ledger.ModuleBalance(sdkCtx, name, params.StakeDenom)
		}
		return nil
	})
	return out, err
}

func (e *Engine) Params(ctx context.Context) (*types.QueryParamsResponse, error) {
	var resp *types.QueryParamsResponse
	err := e.query(ctx, "params", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.queryServer.Params(sdkCtx, &types.QueryParamsRequest{})
		return err
	})
	return resp, err
}

func (e *Engine) GlobalState(ctx context.Context) (*types.QueryGlobalStateResponse, error) {
	var resp *types.QueryGlobalStateResponse
	err := e.query(ctx, "global_state", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.queryServer.GlobalState(sdkCtx, &types.QueryGlobalStateRequest{})
		return err
	})
	return resp, err
}

func (e *Engine) Trader(ctx context.Context, req types.QueryTraderRequest) (*types.QueryTraderResponse, error) {
	var resp *types.QueryTraderResponse
	err := e.query(ctx, "trader", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.queryServer.Trader(sdkCtx, &req)
		return err
	})
	return resp, err
}

func (e *Engine) LiquidityAccount(ctx context.Context, req types.QueryLiquidityAccountRequest) (*types.QueryLiquidityAccountResponse, error) {
	var resp *types.QueryLiquidityAccountResponse
	err := e.query(ctx, "liquidity_account", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.queryServer.LiquidityAccount(sdkCtx, &req)
		return err
	})
	return resp, err
}

// Bandwidth computes the allocation at the current clock without emitting
// anything.
func (e *Engine) Bandwidth(ctx context.Context, req types.QueryBandwidthRequest) (*types.QueryBandwidthResponse, error) {
	var resp *types.QueryBandwidthResponse
	err := e.query(ctx, "bandwidth", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.queryServer.Bandwidth(sdkCtx, &req)
		return err
	})
	return resp, err
}

func (e *Engine) SlashRecords(ctx context.Context, req types.QuerySlashRecordsRequest) (*types.QuerySlashRecordsResponse, error) {
	var resp *types.QuerySlashRecordsResponse
	err := e.query(ctx, "slash_records", func(sdkCtx sdk.Context) (err error) {
		resp, err = e.queryServer.SlashRecords(sdkCtx, &req)
		return err
	})
	return resp, err
}

// CheckInvariants runs every module invariant against the latest state
func (e *Engine) CheckInvariants(ctx context.Context) error {
	return e.query(ctx, "invariants", func(sdkCtx sdk.Context) error {
		if msg, broken := keeper.AllInvariants(*e.keeper)(sdkCtx); broken {
			return fmt.Errorf("%w: %s", ErrInvariantBroken, msg)
		}
		return nil
	})
}

// ExportGenesis exports module state and account balances. Stake and
// liquidity vault balances are omitted; they are rebuilt on import.
func (e *Engine) ExportGenesis(ctx context.Context) (GenesisState, error) {
	gs := NewDefaultGenesisState(e.chainID)
	err := e.query(ctx, "export", func(sdkCtx sdk.Context) error {
		zklr, err := e.keeper.ExportGenesis(sdkCtx)
		if err != nil {
			return err
		}
		gs.Zklr = *zklr

		derived := map[string]bool{
			authtypes.NewModuleAddress(types.StakeVaultName).String():     true,
			authtypes.NewModuleAddress(types.LiquidityVaultName).String(): true,
		}
		index := make(map[string]int)
		return e.ledger.IterateBalances(sdkCtx, func(addr sdk.AccAddress, coin sdk.Coin) bool {
			key := addr.String()
			if derived[key] {
				return false
			}
			if i, ok := index[key]; ok {
				gs.Balances[i].Coins = gs.Balances[i].Coins.Add(coin)
				return false
			}
			index[key] = len(gs.Balances)
			gs.Balances = append(gs.Balances, Balance{Address: key, Coins: sdk.NewCoins(coin)})
			return false
		})
	})
	return gs, err
}

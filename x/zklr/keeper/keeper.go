package keeper

import (
	"context"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// Keeper of the zklr store
type Keeper struct {
	storeKey   storetypes.StoreKey
	bankKeeper types.BankKeeper

	// proofVerifier overrides the length-based oracle built from params
	proofVerifier   types.ProofVerifier
	verifierFactory func(types.Params) types.ProofVerifier

	metrics *ZKLRMetrics
}

// Option configures optional keeper collaborators
type Option func(*Keeper)

// WithProofVerifier installs a proof validity oracle in place of the
// default minimum-length check.
func WithProofVerifier(v types.ProofVerifier) Option {
	return func(k *Keeper) {
		k.proofVerifier = v
	}
}

// WithProofVerifierFactory installs a constructor that builds the proof
// oracle from the params in effect for each operation.
func WithProofVerifierFactory(f func(types.Params) types.ProofVerifier) Option {
	return func(k *Keeper) {
		k.verifierFactory = f
	}
}

// NewKeeper creates a new zklr Keeper instance
func NewKeeper(key storetypes.StoreKey, bankKeeper types.BankKeeper, opts ...Option) *Keeper {
	k := &Keeper{
		storeKey:   key,
		bankKeeper: bankKeeper,
		metrics:    NewZKLRMetrics(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

type kvStoreProvider interface {
	KVStore(key storetypes.StoreKey) storetypes.KVStore
}

// getStore returns the KVStore for the zklr module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	if provider, ok := ctx.(kvStoreProvider); ok {
		return provider.KVStore(k.storeKey)
	}
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// blockTime is the clock source: the unix time of the current block.
func blockTime(ctx context.Context) int64 {
	return sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
}

// atomically runs fn on a cached branch of the store. The branch, and the
// events emitted on it, reach the parent context only if fn succeeds.
func (k Keeper) atomically(ctx context.Context, fn func(ctx sdk.Context) error) error {
	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}
	write()
	return nil
}

// verifierFor returns the proof oracle in effect for params
func (k Keeper) verifierFor(params types.Params) types.ProofVerifier {
	if k.proofVerifier != nil {
		return k.proofVerifier
	}
	if k.verifierFactory != nil {
		return k.verifierFactory(params)
	}
	return types.NewLengthVerifier(params.MinProofLength)
}

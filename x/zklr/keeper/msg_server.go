package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

var _ types.MsgServer = msgServer{}

type msgServer struct {
	Keeper
}

// NewMsgServerImpl returns an implementation of the MsgServer interface
func NewMsgServerImpl(keeper Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

func signerAddress(msg types.Msg) (sdk.AccAddress, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	addr, err := sdk.AccAddressFromBech32(msg.Signer())
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("invalid signer address: %v", err)
	}
	return addr, nil
}

// Initialize creates the global aggregate. It may run only once.
func (ms msgServer) Initialize(goCtx context.Context, msg *types.MsgInitialize) (*types.MsgInitializeResponse, error) {
	admin, err := signerAddress(msg)
	if err != nil {
		return nil, err
	}
	if ms.Keeper.HasGlobalState(goCtx) {
		return nil, types.ErrAlreadyInitialized
	}
	if err := ms.Keeper.Initialize(goCtx, admin); err != nil {
		return nil, err
	}
	return &types.MsgInitializeResponse{}, nil
}

func (ms msgServer) OpenTraderAccount(goCtx context.Context, msg *types.MsgOpenTraderAccount) (*types.MsgOpenTraderAccountResponse, error) {
	trader, err := signerAddress(msg)
	if err != nil {
		return nil, err
	}
	if err := ms.Keeper.OpenTraderAccount(goCtx, trader); err != nil {
		return nil, err
	}
	return &types.MsgOpenTraderAccountResponse{}, nil
}

func (ms msgServer) OpenLiquidityAccount(goCtx context.Context, msg *types.MsgOpenLiquidityAccount) (*types.MsgOpenLiquidityAccountResponse, error) {
	provider, err := signerAddress(msg)
	if err != nil {
		return nil, err
	}
	if err := ms.Keeper.OpenLiquidityAccount(goCtx, provider, msg.PriorityPool); err != nil {
		return nil, err
	}
	return &types.MsgOpenLiquidityAccountResponse{}, nil
}

func (ms msgServer) Stake(goCtx context.Context, msg *types.MsgStake) (*types.MsgStakeResponse, error) {
	trader, err := signerAddress(msg)
	if err != nil {
		return nil, err
	}
	staked, err := ms.Keeper.Stake(goCtx, trader, msg.Amount)
	if err != nil {
		return nil, err
	}
	return &types.MsgStakeResponse{StakedAmount: staked}, nil
}

func (ms msgServer) VerifyPriority(goCtx context.Context, msg *types.MsgVerifyPriority) (*types.MsgVerifyPriorityResponse, error) {
	trader, err := signerAddress(msg)
	if err != nil {
		return nil, err
	}
	resp, err := ms.Keeper.VerifyPriority(goCtx, trader, msg.Proof, msg.Commitment, msg.Latency)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (ms msgServer) BatchStakeAndVerify(goCtx context.Context, msg *types.MsgBatchStakeAndVerify) (*types.MsgBatchStakeAndVerifyResponse, error) {
	trader, err := signerAddress(msg)
	if err != nil {
		return nil, err
	}
	resp, err := ms.Keeper.BatchStakeAndVerify(goCtx, trader, msg.Amount, msg.Proof, msg.Commitment, msg.Latency)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (ms msgServer) RevealTrade(goCtx context.Context, msg *types.MsgRevealTrade) (*types.MsgRevealTradeResponse, error) {
	trader, err := signerAddress(msg)
	if err != nil {
		return nil, err
	}
	if err := ms.Keeper.RevealTrade(goCtx, trader, msg.Order, msg.OrderRangeProof); err != nil {
		return nil, err
	}
	return &types.MsgRevealTradeResponse{}, nil
}

func (ms msgServer) Unstake(goCtx context.Context, msg *types.MsgUnstake) (*types.MsgUnstakeResponse, error) {
	trader, err := signerAddress(msg)
	if err != nil {
		return nil, err
	}
	if err := ms.Keeper.Unstake(goCtx, trader, msg.Amount); err != nil {
		return nil, err
	}
	return &types.MsgUnstakeResponse{}, nil
}

func (ms msgServer) ProvideLiquidity(goCtx context.Context, msg *types.MsgProvideLiquidity) (*types.MsgProvideLiquidityResponse, error) {
	provider, err := signerAddress(msg)
	if err != nil {
		return nil, err
	}
	resp, err := ms.Keeper.ProvideLiquidity(goCtx, provider, msg.Amount, msg.TradeVolume)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateParams replaces the module parameters. Only the admin recorded at
// initialization may call it, and the stake denom cannot change.
func (ms msgServer) UpdateParams(goCtx context.Context, msg *types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)

	if _, err := signerAddress(msg); err != nil {
		return nil, err
	}
	global, err := ms.Keeper.GetGlobalState(ctx)
	if err != nil {
		return nil, err
	}
	if global.Admin != msg.Authority {
		return nil, types.ErrUnauthorized.Wrapf("expected %s, got %s", global.Admin, msg.Authority)
	}

	// vaults and wallets hold the genesis denom
	current, err := ms.Keeper.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	if msg.Params.StakeDenom != current.StakeDenom {
		return nil, types.ErrInvalidParams.Wrapf("stake denom is fixed at %s, got %s", current.StakeDenom, msg.Params.StakeDenom)
	}

	if err := ms.Keeper.SetParams(ctx, msg.Params); err != nil {
		return nil, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeParamsUpdated,
			sdk.NewAttribute(types.AttributeKeyAdmin, msg.Authority),
		),
	)
	ms.metrics.observeOperation("update_params", nil)
	return &types.MsgUpdateParamsResponse{}, nil
}

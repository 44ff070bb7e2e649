package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/zklr-network/zklr/x/zklr/types"
)

var _ types.QueryServer = queryServer{}

const (
	defaultPaginationLimit = 100
	maxPaginationLimit     = 1000
)

type queryServer struct {
	Keeper
}

// NewQueryServerImpl returns an implementation of the QueryServer interface
func NewQueryServerImpl(keeper Keeper) types.QueryServer {
	return &queryServer{Keeper: keeper}
}

// sanitizePagination enforces default and max limits to prevent unbounded queries.
func sanitizePagination(p *query.PageRequest) *query.PageRequest {
	if p == nil {
		return &query.PageRequest{Limit: defaultPaginationLimit}
	}

	if p.Limit == 0 {
		p.Limit = defaultPaginationLimit
	}

	if p.Limit > maxPaginationLimit {
		p.Limit = maxPaginationLimit
	}

	return p
}

// Params returns the module parameters
func (qs queryServer) Params(goCtx context.Context, req *types.QueryParamsRequest) (*types.QueryParamsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}

	params, err := qs.Keeper.GetParams(goCtx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &types.QueryParamsResponse{Params: params}, nil
}

// GlobalState returns the admin and aggregate totals
func (qs queryServer) GlobalState(goCtx context.Context, req *types.QueryGlobalStateRequest) (*types.QueryGlobalStateResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}

	global, err := qs.Keeper.GetGlobalState(goCtx)
	if err != nil {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	return &types.QueryGlobalStateResponse{Global: global}, nil
}

// Trader returns a trader account with its derived status
func (qs queryServer) Trader(goCtx context.Context, req *types.QueryTraderRequest) (*types.QueryTraderResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	trader, err := sdk.AccAddressFromBech32(req.Trader)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid trader address")
	}

	acct, err := qs.Keeper.GetTraderAccount(goCtx, trader)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return &types.QueryTraderResponse{
		Account: acct,
		Status:  types.StatusName(acct.Status(blockTime(goCtx))),
		Strikes: acct.Strikes(),
	}, nil
}

// LiquidityAccount returns a liquidity provider's account
func (qs queryServer) LiquidityAccount(goCtx context.Context, req *types.QueryLiquidityAccountRequest) (*types.QueryLiquidityAccountResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	provider, err := sdk.AccAddressFromBech32(req.Provider)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid provider address")
	}

	acct, err := qs.Keeper.GetLiquidityAccount(goCtx, provider)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return &types.QueryLiquidityAccountResponse{Account: acct}, nil
}

// Bandwidth scores a verified trader at the current block time
func (qs queryServer) Bandwidth(goCtx context.Context, req *types.QueryBandwidthRequest) (*types.QueryBandwidthResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}
	trader, err := sdk.AccAddressFromBech32(req.Trader)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid trader address")
	}

	alloc, err := qs.Keeper.AllocateBandwidth(goCtx, trader)
	if err != nil {
		return nil, err
	}
	return &types.QueryBandwidthResponse{Allocation: alloc}, nil
}

// SlashRecords lists slash records, optionally for one trader
func (qs queryServer) SlashRecords(goCtx context.Context, req *types.QuerySlashRecordsRequest) (*types.QuerySlashRecordsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}

	var trader sdk.AccAddress
	if req.Trader != "" {
		addr, err := sdk.AccAddressFromBech32(req.Trader)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "invalid trader address")
		}
		trader = addr
	}

	records, pageRes, err := qs.Keeper.ListSlashRecords(goCtx, trader, sanitizePagination(req.Pagination))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &types.QuerySlashRecordsResponse{Records: records, Pagination: pageRes}, nil
}

package types

import (
	"github.com/cosmos/cosmos-sdk/types/query"
)

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `json:"params"`
}

type QueryGlobalStateRequest struct{}

type QueryGlobalStateResponse struct {
	Global GlobalState `json:"global"`
}

type QueryTraderRequest struct {
	Trader string `json:"trader"`
}

type QueryTraderResponse struct {
	Account TraderAccount `json:"account"`
	Status  string        `json:"status"`
	Strikes uint32        `json:"strikes"`
}

type QueryLiquidityAccountRequest struct {
	Provider string `json:"provider"`
}

type QueryLiquidityAccountResponse struct {
	Account LiquidityAccount `json:"account"`
}

type QueryBandwidthRequest struct {
	Trader string `json:"trader"`
}

type QueryBandwidthResponse struct {
	Allocation BandwidthAllocation `json:"allocation"`
}

type QuerySlashRecordsRequest struct {
	// Trader filters by trader when set
	Trader     string             `json:"trader,omitempty"`
	Pagination *query.PageRequest `json:"pagination,omitempty"`
}

type QuerySlashRecordsResponse struct {
	Records    []SlashRecord       `json:"records"`
	Pagination *query.PageResponse `json:"pagination,omitempty"`
}

// BandwidthAllocation is the result of the priority scoring function.
type BandwidthAllocation struct {
	EffectivePriority uint64 `json:"effective_priority"`
	BasePriority      uint64 `json:"base_priority"`
	DecayFactor       int64  `json:"decay_factor"`
	Elapsed           int64  `json:"elapsed"`
}

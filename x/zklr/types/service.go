package types

import "context"

// Msg is implemented by every zklr message. Signer names the identity that
// must authorize it; for account operations that is the account owner.
type Msg interface {
	ValidateBasic() error
	Signer() string
}

var (
	_ Msg = MsgInitialize{}
	_ Msg = MsgOpenTraderAccount{}
	_ Msg = MsgOpenLiquidityAccount{}
	_ Msg = MsgStake{}
	_ Msg = MsgVerifyPriority{}
	_ Msg = MsgBatchStakeAndVerify{}
	_ Msg = MsgRevealTrade{}
	_ Msg = MsgUnstake{}
	_ Msg = MsgProvideLiquidity{}
	_ Msg = MsgUpdateParams{}
)

func (m MsgInitialize) Signer() string           { return m.Admin }
func (m MsgOpenTraderAccount) Signer() string    { return m.Trader }
func (m MsgOpenLiquidityAccount) Signer() string { return m.Provider }
func (m MsgStake) Signer() string                { return m.Trader }
func (m MsgVerifyPriority) Signer() string       { return m.Trader }
func (m MsgBatchStakeAndVerify) Signer() string  { return m.Trader }
func (m MsgRevealTrade) Signer() string          { return m.Trader }
func (m MsgUnstake) Signer() string              { return m.Trader }
func (m MsgProvideLiquidity) Signer() string     { return m.Provider }
func (m MsgUpdateParams) Signer() string         { return m.Authority }

// MsgServer is the state-changing surface of the zklr module
type MsgServer interface {
	Initialize(context.Context, *MsgInitialize) (*MsgInitializeResponse, error)
	OpenTraderAccount(context.Context, *MsgOpenTraderAccount) (*MsgOpenTraderAccountResponse, error)
	OpenLiquidityAccount(context.Context, *MsgOpenLiquidityAccount) (*MsgOpenLiquidityAccountResponse, error)
	Stake(context.Context, *MsgStake) (*MsgStakeResponse, error)
	VerifyPriority(context.Context, *MsgVerifyPriority) (*MsgVerifyPriorityResponse, error)
	BatchStakeAndVerify(context.Context, *MsgBatchStakeAndVerify) (*MsgBatchStakeAndVerifyResponse, error)
	RevealTrade(context.Context, *MsgRevealTrade) (*MsgRevealTradeResponse, error)
	Unstake(context.Context, *MsgUnstake) (*MsgUnstakeResponse, error)
	ProvideLiquidity(context.Context, *MsgProvideLiquidity) (*MsgProvideLiquidityResponse, error)
	UpdateParams(context.Context, *MsgUpdateParams) (*MsgUpdateParamsResponse, error)
}

// QueryServer is the read-only surface of the zklr module
type QueryServer interface {
	Params(context.Context, *QueryParamsRequest) (*QueryParamsResponse, error)
	GlobalState(context.Context, *QueryGlobalStateRequest) (*QueryGlobalStateResponse, error)
	Trader(context.Context, *QueryTraderRequest) (*QueryTraderResponse, error)
	LiquidityAccount(context.Context, *QueryLiquidityAccountRequest) (*QueryLiquidityAccountResponse, error)
	Bandwidth(context.Context, *QueryBandwidthRequest) (*QueryBandwidthResponse, error)
	SlashRecords(context.Context, *QuerySlashRecordsRequest) (*QuerySlashRecordsResponse, error)
}

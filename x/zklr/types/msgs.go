package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MsgInitialize creates the global aggregate with its administrator.
type MsgInitialize struct {
	Admin string `json:"admin"`
}

// MsgOpenTraderAccount provisions a trader account for its signer.
type MsgOpenTraderAccount struct {
	Trader string `json:"trader"`
}

// MsgOpenLiquidityAccount provisions a liquidity account for its signer.
type MsgOpenLiquidityAccount struct {
	Provider     string `json:"provider"`
	PriorityPool bool   `json:"priority_pool"`
}

// MsgStake moves collateral into the stake vault.
type MsgStake struct {
	Trader string `json:"trader"`
	Amount uint64 `json:"amount"`
}

// MsgVerifyPriority submits a proof and an order commitment.
type MsgVerifyPriority struct {
	Trader     string `json:"trader"`
	Proof      []byte `json:"proof"`
	Commitment Digest `json:"commitment"`
	Latency    uint64 `json:"latency"`
}

// MsgBatchStakeAndVerify stakes, pays the fee and is verified in one step.
type MsgBatchStakeAndVerify struct {
	Trader     string `json:"trader"`
	Amount     uint64 `json:"amount"`
	Proof      []byte `json:"proof"`
	Commitment Digest `json:"commitment"`
	Latency    uint64 `json:"latency"`
}

// MsgRevealTrade opens a previously committed order.
type MsgRevealTrade struct {
	Trader          string `json:"trader"`
	Order           []byte `json:"order"`
	OrderRangeProof []byte `json:"order_range_proof"`
}

// MsgUnstake withdraws collateral after the lockup.
type MsgUnstake struct {
	Trader string `json:"trader"`
	Amount uint64 `json:"amount"`
}

// MsgProvideLiquidity deposits into the liquidity vault.
type MsgProvideLiquidity struct {
	Provider    string `json:"provider"`
	Amount      uint64 `json:"amount"`
	TradeVolume uint64 `json:"trade_volume"`
}

// MsgUpdateParams replaces the module parameters. Admin only.
type MsgUpdateParams struct {
	Authority string `json:"authority"`
	Params    Params `json:"params"`
}

type (
	MsgInitializeResponse           struct{}
	MsgOpenTraderAccountResponse    struct{}
	MsgOpenLiquidityAccountResponse struct{}
	MsgUnstakeResponse              struct{}
	MsgRevealTradeResponse          struct{}
	MsgUpdateParamsResponse         struct{}
)

type MsgStakeResponse struct {
	StakedAmount uint64 `json:"staked_amount"`
}

type MsgVerifyPriorityResponse struct {
	Fee             uint64 `json:"fee"`
	ProofDigest     Digest `json:"proof_digest"`
	ProofExpiry     int64  `json:"proof_expiry"`
	SpeedMultiplier uint64 `json:"speed_multiplier"`
}

type MsgBatchStakeAndVerifyResponse struct {
	Fee             uint64 `json:"fee"`
	StakedAmount    uint64 `json:"staked_amount"`
	ProofExpiry     int64  `json:"proof_expiry"`
	SpeedMultiplier uint64 `json:"speed_multiplier"`
}

type MsgProvideLiquidityResponse struct {
	Bonus             uint64 `json:"bonus"`
	LiquidityProvided uint64 `json:"liquidity_provided"`
}

func validateAddress(field, addr string) error {
	if _, err := sdk.AccAddressFromBech32(addr); err != nil {
		return ErrInvalidAddress.Wrapf("%s: %v", field, err)
	}
	return nil
}

func (m MsgInitialize) ValidateBasic() error { return validateAddress("admin", m.Admin) }

func (m MsgOpenTraderAccount) ValidateBasic() error { return validateAddress("trader", m.Trader) }

func (m MsgOpenLiquidityAccount) ValidateBasic() error {
	return validateAddress("provider", m.Provider)
}

func (m MsgStake) ValidateBasic() error {
	if err := validateAddress("trader", m.Trader); err != nil {
		return err
	}
	if m.Amount == 0 {
		return ErrInvalidAmount.Wrap("stake amount must be positive")
	}
	return nil
}

// ValidateBasic does not judge the proof itself: rejected proofs must reach
// the keeper so the penalty can be applied.
func (m MsgVerifyPriority) ValidateBasic() error {
	return validateAddress("trader", m.Trader)
}

func (m MsgBatchStakeAndVerify) ValidateBasic() error {
	if err := validateAddress("trader", m.Trader); err != nil {
		return err
	}
	if m.Amount == 0 {
		return ErrInvalidAmount.Wrap("stake amount must be positive")
	}
	return nil
}

func (m MsgRevealTrade) ValidateBasic() error { return validateAddress("trader", m.Trader) }

func (m MsgUnstake) ValidateBasic() error {
	if err := validateAddress("trader", m.Trader); err != nil {
		return err
	}
	if m.Amount == 0 {
		return ErrInvalidAmount.Wrap("unstake amount must be positive")
	}
	return nil
}

func (m MsgProvideLiquidity) ValidateBasic() error {
	if err := validateAddress("provider", m.Provider); err != nil {
		return err
	}
	if m.Amount == 0 {
		return ErrInvalidAmount.Wrap("liquidity amount must be positive")
	}
	return nil
}

func (m MsgUpdateParams) ValidateBasic() error {
	if err := validateAddress("authority", m.Authority); err != nil {
		return err
	}
	return m.Params.Validate()
}

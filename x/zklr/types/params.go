package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Default parameter values
const (
	DefaultProofValidityPeriod  int64  = 3600  // 1 hour
	DefaultFeePercentage        uint64 = 1     // 1% of stake per accepted proof
	DefaultMaxInvalidProofs     uint32 = 3     // strikes before a slash
	DefaultSlashPercentage      uint64 = 20    // 20% of stake per slash
	DefaultDecayPeriod          int64  = 86400 // 1 day bandwidth decay
	DefaultLockupPeriod         int64  = 3600  // 1 hour before unstaking
	DefaultRevealDelay          int64  = 30    // 30 seconds between proof and reveal
	DefaultPriorityPoolBonus    uint64 = 10    // 10% bonus for priority pool LPs
	DefaultLiquidityLockPeriod  int64  = 86400 // 1 day liquidity lock
	DefaultSpeedNumerator       uint64 = 1000
	DefaultMinProofLength       uint32 = 10
	DefaultMinConfidentialStake uint64 = 100
	DefaultStakeDenom                  = "uzklr"
)

// Supported commitment hash functions
const (
	HashSHA256    = "sha256"
	HashKeccak256 = "keccak256"
)

// Params holds every tunable constant of the engine. Periods are in seconds.
type Params struct {
	ProofValidityPeriod  int64  `json:"proof_validity_period"`
	FeePercentage        uint64 `json:"fee_percentage"`
	MaxInvalidProofs     uint32 `json:"max_invalid_proofs"`
	SlashPercentage      uint64 `json:"slash_percentage"`
	DecayPeriod          int64  `json:"decay_period"`
	LockupPeriod         int64  `json:"lockup_period"`
	RevealDelay          int64  `json:"reveal_delay"`
	PriorityPoolBonus    uint64 `json:"priority_pool_bonus"`
	LiquidityLockPeriod  int64  `json:"liquidity_lock_period"`
	SpeedNumerator       uint64 `json:"speed_numerator"`
	MinProofLength       uint32 `json:"min_proof_length"`
	MinConfidentialStake uint64 `json:"min_confidential_stake"`
	StakeDenom           string `json:"stake_denom"`
	CommitmentHash       string `json:"commitment_hash"`
}

// DefaultParams returns the default module parameters
func DefaultParams() Params {
	return Params{
		ProofValidityPeriod:  DefaultProofValidityPeriod,
		FeePercentage:        DefaultFeePercentage,
		MaxInvalidProofs:     DefaultMaxInvalidProofs,
		SlashPercentage:      DefaultSlashPercentage,
		DecayPeriod:          DefaultDecayPeriod,
		LockupPeriod:         DefaultLockupPeriod,
		RevealDelay:          DefaultRevealDelay,
		PriorityPoolBonus:    DefaultPriorityPoolBonus,
		LiquidityLockPeriod:  DefaultLiquidityLockPeriod,
		SpeedNumerator:       DefaultSpeedNumerator,
		MinProofLength:       DefaultMinProofLength,
		MinConfidentialStake: DefaultMinConfidentialStake,
		StakeDenom:           DefaultStakeDenom,
		CommitmentHash:       HashSHA256,
	}
}

// Validate performs basic validation of the parameters
func (p Params) Validate() error {
	if p.ProofValidityPeriod <= 0 {
		return ErrInvalidParams.Wrapf("proof validity period must be positive: %d", p.ProofValidityPeriod)
	}
	if p.FeePercentage > 100 {
		return ErrInvalidParams.Wrapf("fee percentage must be <= 100: %d", p.FeePercentage)
	}
	if p.MaxInvalidProofs == 0 {
		return ErrInvalidParams.Wrap("max invalid proofs must be at least 1")
	}
	if p.SlashPercentage > 100 {
		return ErrInvalidParams.Wrapf("slash percentage must be <= 100: %d", p.SlashPercentage)
	}
	if p.DecayPeriod <= 0 {
		return ErrInvalidParams.Wrapf("decay period must be positive: %d", p.DecayPeriod)
	}
	if p.LockupPeriod < 0 {
		return ErrInvalidParams.Wrapf("lockup period cannot be negative: %d", p.LockupPeriod)
	}
	if p.RevealDelay < 0 {
		return ErrInvalidParams.Wrapf("reveal delay cannot be negative: %d", p.RevealDelay)
	}
	if p.PriorityPoolBonus > 100 {
		return ErrInvalidParams.Wrapf("priority pool bonus must be <= 100: %d", p.PriorityPoolBonus)
	}
	if p.LiquidityLockPeriod < 0 {
		return ErrInvalidParams.Wrapf("liquidity lock period cannot be negative: %d", p.LiquidityLockPeriod)
	}
	if p.SpeedNumerator == 0 {
		return ErrInvalidParams.Wrap("speed numerator must be positive")
	}
	if err := sdk.ValidateDenom(p.StakeDenom); err != nil {
		return ErrInvalidParams.Wrapf("stake denom: %v", err)
	}
	if _, err := NewHasher(p.CommitmentHash); err != nil {
		return ErrInvalidParams.Wrap(err.Error())
	}
	return nil
}

// String implements fmt.Stringer
func (p Params) String() string {
	return fmt.Sprintf(
		"validity=%ds fee=%d%% max_invalid=%d slash=%d%% decay=%ds lockup=%ds reveal_delay=%ds bonus=%d%% lp_lock=%ds denom=%s hash=%s",
		p.ProofValidityPeriod, p.FeePercentage, p.MaxInvalidProofs, p.SlashPercentage,
		p.DecayPeriod, p.LockupPeriod, p.RevealDelay, p.PriorityPoolBonus,
		p.LiquidityLockPeriod, p.StakeDenom, p.CommitmentHash,
	)
}

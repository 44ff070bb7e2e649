package types

import (
	"encoding/hex"
	"fmt"
	"time"
)

// DigestSize is the size in bytes of a commitment or proof digest
const DigestSize = 32

// Digest is a 32-byte hash output. It encodes as hex in JSON.
type Digest [DigestSize]byte

// DigestFromBytes copies bz into a Digest, rejecting any other length
func DigestFromBytes(bz []byte) (Digest, error) {
	var d Digest
	if len(bz) != DigestSize {
		return d, ErrInvalidCommitment.Wrapf("expected %d bytes, got %d", DigestSize, len(bz))
	}
	copy(d[:], bz)
	return d, nil
}

// DigestFromHex parses a hex encoded digest
func DigestFromHex(s string) (Digest, error) {
	bz, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, ErrInvalidCommitment.Wrapf("invalid hex: %v", err)
	}
	return DigestFromBytes(bz)
}

func (d Digest) IsZero() bool { return d == Digest{} }

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(d[:])), nil
}

func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := DigestFromHex(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GlobalState tracks the system-wide totals. TotalStaked mirrors the sum of
// all trader stakes and TotalLiquidity the sum of all liquidity provided.
type GlobalState struct {
	Admin          string `json:"admin"`
	TotalStaked    uint64 `json:"total_staked"`
	TotalLiquidity uint64 `json:"total_liquidity"`
}

// TraderAccount is the flat persisted form of a trader's state machine.
type TraderAccount struct {
	Owner                string `json:"owner"`
	StakedAmount         uint64 `json:"staked_amount"`
	IsVerified           bool   `json:"is_verified"`
	ProofExpiry          int64  `json:"proof_expiry"`
	LastProofUpdate      int64  `json:"last_proof_update"`
	ZKProofDigest        Digest `json:"zk_proof_digest"`
	InvalidProofAttempts uint32 `json:"invalid_proof_attempts"`
	Commitment           Digest `json:"commitment"`
	LastStakeTimestamp   int64  `json:"last_stake_timestamp"`
	SpeedMultiplier      uint64 `json:"speed_multiplier"`
	TradeVolume          uint64 `json:"trade_volume"`
}

// NewTraderAccount returns an empty account owned by owner
func NewTraderAccount(owner string) TraderAccount {
	return TraderAccount{Owner: owner}
}

// LiquidityAccount is a liquidity provider's deposit and reward record.
type LiquidityAccount struct {
	Owner             string `json:"owner"`
	LiquidityProvided uint64 `json:"liquidity_provided"`
	IsPriorityPool    bool   `json:"is_priority_pool"`
	RewardBalance     uint64 `json:"reward_balance"`
	LockTimestamp     int64  `json:"lock_timestamp"`
	TradeVolume       uint64 `json:"trade_volume"`
}

// NewLiquidityAccount returns an empty liquidity account locked from lockTimestamp
func NewLiquidityAccount(owner string, priorityPool bool, lockTimestamp int64) LiquidityAccount {
	return LiquidityAccount{
		Owner:          owner,
		IsPriorityPool: priorityPool,
		LockTimestamp:  lockTimestamp,
	}
}

// Deposited returns the amount actually transferred into the liquidity vault
func (a LiquidityAccount) Deposited() uint64 {
	if a.RewardBalance > a.LiquidityProvided {
		return 0
	}
	return a.LiquidityProvided - a.RewardBalance
}

// SlashRecord is the audit entry written for every slash
type SlashRecord struct {
	ID          uint64      `json:"id"`
	Trader      string      `json:"trader"`
	Amount      uint64      `json:"amount"`
	StakeBefore uint64      `json:"stake_before"`
	Reason      FailureKind `json:"reason"`
	SlashedAt   time.Time   `json:"slashed_at"`
}

// FailureKind names the submission that triggered a penalty
type FailureKind string

const (
	FailureInvalidProof       FailureKind = "invalid_proof"
	FailureInvalidRangeProof  FailureKind = "invalid_range_proof"
	FailureCommitmentMismatch FailureKind = "commitment_mismatch"
	FailureBatchInvalidProof  FailureKind = "batch_invalid_proof"
)

func (k FailureKind) String() string { return string(k) }

// Validate checks a failure kind is known
func (k FailureKind) Validate() error {
	switch k {
	case FailureInvalidProof, FailureInvalidRangeProof, FailureCommitmentMismatch, FailureBatchInvalidProof:
		return nil
	default:
		return fmt.Errorf("unknown failure kind %q", string(k))
	}
}

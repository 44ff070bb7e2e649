package types

import (
	"cosmossdk.io/errors"
)

// zklr module sentinel errors
var (
	ErrArithmeticOverflow      = errors.Register(ModuleName, 2, "arithmetic overflow occurred")
	ErrArithmeticUnderflow     = errors.Register(ModuleName, 3, "arithmetic underflow occurred")
	ErrDivisionByZero          = errors.Register(ModuleName, 4, "division by zero")
	ErrInvalidProof            = errors.Register(ModuleName, 5, "invalid zero-knowledge proof provided")
	ErrInvalidReveal           = errors.Register(ModuleName, 6, "invalid reveal: commitment does not match the revealed order or range proof failed")
	ErrTraderNotVerified       = errors.Register(ModuleName, 7, "trader is not verified for bandwidth allocation")
	ErrProofExpired            = errors.Register(ModuleName, 8, "proof has expired")
	ErrLockupPeriodNotElapsed  = errors.Register(ModuleName, 9, "lockup period has not elapsed for unstaking")
	ErrInsufficientStake       = errors.Register(ModuleName, 10, "insufficient staked amount")
	ErrRevealTooEarly          = errors.Register(ModuleName, 11, "reveal attempted too early")
	ErrLiquidityLockNotElapsed = errors.Register(ModuleName, 12, "liquidity funds are still locked")

	// account store and authorization
	ErrAccountNotFound     = errors.Register(ModuleName, 20, "account not found")
	ErrAccountExists       = errors.Register(ModuleName, 21, "account already exists")
	ErrUnauthorized        = errors.Register(ModuleName, 22, "signer is not authorized for this account")
	ErrNotInitialized      = errors.Register(ModuleName, 23, "global state not initialized")
	ErrAlreadyInitialized  = errors.Register(ModuleName, 24, "global state already initialized")
	ErrInvalidParams       = errors.Register(ModuleName, 25, "invalid module parameters")
	ErrInvalidAddress      = errors.Register(ModuleName, 26, "invalid address")
	ErrInvalidAmount       = errors.Register(ModuleName, 27, "invalid amount")
	ErrInvalidCommitment   = errors.Register(ModuleName, 28, "invalid commitment")
	ErrTransferFailed      = errors.Register(ModuleName, 29, "ledger transfer failed")
	ErrInvalidGenesis      = errors.Register(ModuleName, 30, "invalid genesis state")
	ErrSlashRecordNotFound = errors.Register(ModuleName, 31, "slash record not found")
)

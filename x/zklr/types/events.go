package types

// Event types for the zklr module
const (
	EventTypeGlobalInitialized  = "global_initialized"
	EventTypeAccountOpened      = "account_opened"
	EventTypeTraderStaked       = "trader_staked"
	EventTypePriorityVerified   = "priority_verified"
	EventTypeBatchVerified      = "batch_stake_verified"
	EventTypeTradeRevealed      = "trade_revealed"
	EventTypeTraderUnstaked     = "trader_unstaked"
	EventTypeLiquidityProvided  = "liquidity_provided"
	EventTypeProofRejected      = "proof_rejected"
	EventTypeTraderSlashed      = "trader_slashed"
	EventTypeBandwidthAllocated = "bandwidth_allocated"
	EventTypeParamsUpdated      = "params_updated"
)

// Event attribute keys
const (
	AttributeKeyAdmin           = "admin"
	AttributeKeyTrader          = "trader"
	AttributeKeyProvider        = "provider"
	AttributeKeyAccountKind     = "account_kind"
	AttributeKeyAmount          = "amount"
	AttributeKeyFee             = "fee"
	AttributeKeyBonus           = "bonus"
	AttributeKeyStakedAmount    = "staked_amount"
	AttributeKeyProofDigest     = "proof_digest"
	AttributeKeyProofExpiry     = "proof_expiry"
	AttributeKeySpeedMultiplier = "speed_multiplier"
	AttributeKeyReason          = "reason"
	AttributeKeyAttempts        = "invalid_attempts"
	AttributeKeySlashID         = "slash_id"
	AttributeKeyPriority        = "effective_priority"
	AttributeKeyTradeVolume     = "trade_volume"
)

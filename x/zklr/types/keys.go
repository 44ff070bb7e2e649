package types

import (
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	// ModuleName defines the module name
	ModuleName = "zklr"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// StakeVaultName is the module account holding staked collateral
	StakeVaultName = "zklr_stake_vault"

	// LiquidityVaultName is the module account holding liquidity deposits
	LiquidityVaultName = "zklr_liquidity_vault"

	// FeeCollectorName receives verification fees and slashed stake
	FeeCollectorName = "zklr_fee_collector"
)

var (
	ParamsKey                 = []byte{0x00}
	GlobalStateKey            = []byte{0x01}
	TraderAccountKeyPrefix    = []byte{0x02}
	LiquidityAccountKeyPrefix = []byte{0x03}
	SlashRecordKeyPrefix      = []byte{0x04}
	SlashRecordByTraderPrefix = []byte{0x05}
	NextSlashIDKey            = []byte{0x06}
)

// TraderAccountKey returns the store key for a trader account
func TraderAccountKey(trader sdk.AccAddress) []byte {
	return append(append([]byte{}, TraderAccountKeyPrefix...), address.MustLengthPrefix(trader)...)
}

// LiquidityAccountKey returns the store key for a liquidity account
func LiquidityAccountKey(provider sdk.AccAddress) []byte {
	return append(append([]byte{}, LiquidityAccountKeyPrefix...), address.MustLengthPrefix(provider)...)
}

// SlashRecordKey returns the store key for a slash record
func SlashRecordKey(id uint64) []byte {
	return append(append([]byte{}, SlashRecordKeyPrefix...), sdk.Uint64ToBigEndian(id)...)
}

// SlashRecordByTraderPrefixKey returns the index prefix for one trader's slash records
func SlashRecordByTraderPrefixKey(trader sdk.AccAddress) []byte {
	return append(append([]byte{}, SlashRecordByTraderPrefix...), address.MustLengthPrefix(trader)...)
}

// SlashRecordByTraderKey returns the index key for a trader's slash record
func SlashRecordByTraderKey(trader sdk.AccAddress, id uint64) []byte {
	return append(SlashRecordByTraderPrefixKey(trader), sdk.Uint64ToBigEndian(id)...)
}

// SlashIDFromIndexKey extracts the slash id from the tail of an index key
func SlashIDFromIndexKey(key []byte) (uint64, bool) {
	if len(key) < 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(key[len(key)-8:]), true
}

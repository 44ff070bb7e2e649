package app

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/zklr-network/zklr/x/zklr/types"
)

const (
	// Bech32PrefixAccAddr defines the Bech32 prefix of an account's address
	Bech32PrefixAccAddr = "zklr"
	// Bech32PrefixAccPub defines the Bech32 prefix of an account's public key
	Bech32PrefixAccPub = "zklrpub"
	// Bech32PrefixValAddr defines the Bech32 prefix of a validator's operator address
	Bech32PrefixValAddr = "zklrvaloper"
	// Bech32PrefixValPub defines the Bech32 prefix of a validator's operator public key
	Bech32PrefixValPub = "zklrvaloperpub"
	// Bech32PrefixConsAddr defines the Bech32 prefix of a consensus node address
	Bech32PrefixConsAddr = "zklrvalcons"
	// Bech32PrefixConsPub defines the Bech32 prefix of a consensus node public key
	Bech32PrefixConsPub = "zklrvalconspub"

	// CoinType is the SLIP44 coin type used for key derivation
	CoinType = 118

	// BondDenom is the collateral denomination used by default params
	BondDenom = types.DefaultStakeDenom

	// DefaultChainID names the engine instance in spans and headers
	DefaultChainID = "zklr-local-1"
)

// SetConfig installs the zklr bech32 prefixes and seals the SDK config.
// It must run before any address is parsed or printed.
func SetConfig() {
	config := sdk.GetConfig()
	config.SetBech32PrefixForAccount(Bech32PrefixAccAddr, Bech32PrefixAccPub)
	config.SetBech32PrefixForValidator(Bech32PrefixValAddr, Bech32PrefixValPub)
	config.SetBech32PrefixForConsensusNode(Bech32PrefixConsAddr, Bech32PrefixConsPub)
	config.SetCoinType(CoinType)
	config.Seal()
}

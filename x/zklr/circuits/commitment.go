package circuits

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	mimcbn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// CommitmentSize is the byte length of an encoded stake commitment
const CommitmentSize = fr.Bytes

// StakeCommitment computes MiMC(secret, stake) natively, matching the
// in-circuit computation of EligibilityCircuit.
func StakeCommitment(secret, stake uint64) *big.Int {
	h := mimcbn254.NewMiMC()
	for _, v := range []uint64{secret, stake} {
		var el fr.Element
		el.SetUint64(v)
		bz := el.Bytes()
		h.Write(bz[:])
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}

// encodeCommitment returns c as a fixed-width big-endian field element
func encodeCommitment(c *big.Int) []byte {
	var el fr.Element
	el.SetBigInt(c)
	bz := el.Bytes()
	return bz[:]
}

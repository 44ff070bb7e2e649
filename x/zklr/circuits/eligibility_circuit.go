package circuits

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// EligibilityCircuit proves that the prover knows a stake of at least
// MinStake together with the secret nonce that commits to it.
//
// Circuit Statement: "Commitment = MiMC(Secret, Stake) and Stake >= MinStake,
// without revealing Secret or Stake."
type EligibilityCircuit struct {
	// Public inputs
	Commitment frontend.Variable `gnark:",public"`
	MinStake   frontend.Variable `gnark:",public"`

	// Private inputs
	Secret frontend.Variable `gnark:",secret"`
	Stake  frontend.Variable `gnark:",secret"`
}

// Define implements the gnark Circuit interface
func (circuit *EligibilityCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return fmt.Errorf("failed to initialize MiMC hasher: %w", err)
	}

	h.Write(circuit.Secret)
	h.Write(circuit.Stake)
	api.AssertIsEqual(h.Sum(), circuit.Commitment)

	// Stake is a 64-bit amount
	api.ToBinary(circuit.Stake, 64)
	api.AssertIsLessOrEqual(circuit.MinStake, circuit.Stake)

	return nil
}

package circuits

import (
	"bytes"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// Keys holds the compiled eligibility circuit and its Groth16 key pair
type Keys struct {
	CCS constraint.ConstraintSystem
	PK  groth16.ProvingKey
	VK  groth16.VerifyingKey
}

// Compile compiles the eligibility circuit over BN254
func Compile() (constraint.ConstraintSystem, error) {
	var circuit EligibilityCircuit
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("failed to compile eligibility circuit: %w", err)
	}
	return ccs, nil
}

// Setup compiles the circuit and runs a local Groth16 setup. The resulting
// keys are suitable for development networks and tests only.
func Setup() (*Keys, error) {
	ccs, err := Compile()
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup failed: %w", err)
	}
	return &Keys{CCS: ccs, PK: pk, VK: vk}, nil
}

// Prove builds a proof blob for a trader holding stake, committed with
// secret, against minStake. The blob is the 32-byte commitment followed by
// the serialized proof.
func (k *Keys) Prove(secret, stake, minStake uint64) ([]byte, error) {
	commitment := StakeCommitment(secret, stake)
	assignment := &EligibilityCircuit{
		Commitment: commitment,
		MinStake:   minStake,
		Secret:     secret,
		Stake:      stake,
	}

	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to create witness: %w", err)
	}
	proof, err := groth16.Prove(k.CCS, k.PK, witness)
	if err != nil {
		return nil, fmt.Errorf("failed to generate proof: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(encodeCommitment(commitment))
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize proof: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteVerifyingKey serializes vk to w
func WriteVerifyingKey(w io.Writer, vk groth16.VerifyingKey) error {
	_, err := vk.WriteTo(w)
	return err
}

// ReadVerifyingKey deserializes a BN254 verifying key from r
func ReadVerifyingKey(r io.Reader) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to read verifying key: %w", err)
	}
	return vk, nil
}

// WriteProvingKey serializes pk to w
func WriteProvingKey(w io.Writer, pk groth16.ProvingKey) error {
	_, err := pk.WriteTo(w)
	return err
}

// LoadProver recompiles the circuit and reads the matching proving key
// from r.
func LoadProver(r io.Reader) (*Keys, error) {
	ccs, err := Compile()
	if err != nil {
		return nil, err
	}
	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to read proving key: %w", err)
	}
	return &Keys{CCS: ccs, PK: pk}, nil
}

// Groth16Verifier accepts proof blobs produced by Keys.Prove for a fixed
// minimum stake.
//
// The public inputs are only the stake commitment and the minimum. A blob
// is bound neither to the submitting trader nor to their StakedAmount, so
// one valid blob verifies for any trader and also passes as an order range
// proof. Callers needing per-trader binding must check the commitment
// against their own records.
type Groth16Verifier struct {
	vk       groth16.VerifyingKey
	minStake uint64
}

var _ types.ProofVerifier = (*Groth16Verifier)(nil)

// NewGroth16Verifier returns a verifier checking proofs against minStake
func NewGroth16Verifier(vk groth16.VerifyingKey, minStake uint64) *Groth16Verifier {
	return &Groth16Verifier{vk: vk, minStake: minStake}
}

// VerifierFactory returns a keeper proof verifier factory that binds the
// minimum stake to the current MinConfidentialStake parameter.
func VerifierFactory(vk groth16.VerifyingKey) func(types.Params) types.ProofVerifier {
	return func(params types.Params) types.ProofVerifier {
		return NewGroth16Verifier(vk, params.MinConfidentialStake)
	}
}

// IsValid implements types.ProofVerifier
func (v *Groth16Verifier) IsValid(blob []byte) bool {
	if len(blob) <= CommitmentSize {
		return false
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(blob[CommitmentSize:])); err != nil {
		return false
	}

	assignment := &EligibilityCircuit{
		Commitment: new(big.Int).SetBytes(blob[:CommitmentSize]),
		MinStake:   v.minStake,
	}
	publicWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false
	}

	return groth16.Verify(proof, v.vk, publicWitness) == nil
}

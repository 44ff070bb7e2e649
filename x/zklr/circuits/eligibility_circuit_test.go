package circuits

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
)

func TestEligibilityCircuitValidAssignment(t *testing.T) {
	assignment := &EligibilityCircuit{
		Commitment: StakeCommitment(777, 1_000),
		MinStake:   100,
		Secret:     777,
		Stake:      1_000,
	}

	assert := test.NewAssert(t)
	assert.SolvingSucceeded(new(EligibilityCircuit), assignment, test.WithCurves(ecc.BN254))
}

func TestEligibilityCircuitStakeAtMinimum(t *testing.T) {
	assignment := &EligibilityCircuit{
		Commitment: StakeCommitment(1, 100),
		MinStake:   100,
		Secret:     1,
		Stake:      100,
	}

	assert := test.NewAssert(t)
	assert.SolvingSucceeded(new(EligibilityCircuit), assignment, test.WithCurves(ecc.BN254))
}

func TestEligibilityCircuitRejectsStakeBelowMinimum(t *testing.T) {
	assignment := &EligibilityCircuit{
		Commitment: StakeCommitment(777, 99),
		MinStake:   100,
		Secret:     777,
		Stake:      99,
	}

	assert := test.NewAssert(t)
	assert.SolvingFailed(new(EligibilityCircuit), assignment, test.WithCurves(ecc.BN254))
}

func TestEligibilityCircuitRejectsWrongCommitment(t *testing.T) {
	assignment := &EligibilityCircuit{
		Commitment: StakeCommitment(778, 1_000),
		MinStake:   100,
		Secret:     777,
		Stake:      1_000,
	}

	assert := test.NewAssert(t)
	assert.SolvingFailed(new(EligibilityCircuit), assignment, test.WithCurves(ecc.BN254))
}

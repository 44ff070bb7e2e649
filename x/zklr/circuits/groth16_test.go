package circuits_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	keepertest "github.com/zklr-network/zklr/testutil/keeper"
	"github.com/zklr-network/zklr/x/zklr/circuits"
	"github.com/zklr-network/zklr/x/zklr/keeper"
	"github.com/zklr-network/zklr/x/zklr/types"
)

var (
	keysOnce sync.Once
	testKeys *circuits.Keys
	keysErr  error
)

func setupKeys(t *testing.T) *circuits.Keys {
	t.Helper()
	keysOnce.Do(func() {
		testKeys, keysErr = circuits.Setup()
	})
	require.NoError(t, keysErr)
	return testKeys
}

func TestGroth16Verifier(t *testing.T) {
	keys := setupKeys(t)
	verifier := circuits.NewGroth16Verifier(keys.VK, 100)

	blob, err := keys.Prove(42, 5_000, 100)
	require.NoError(t, err)

	t.Run("accepts a valid proof", func(t *testing.T) {
		require.True(t, verifier.IsValid(blob))
	})

	t.Run("rejects a proof for a different minimum", func(t *testing.T) {
		require.False(t, circuits.NewGroth16Verifier(keys.VK, 6_000).IsValid(blob))
	})

	t.Run("rejects a swapped commitment", func(t *testing.T) {
		tampered := append([]byte{}, blob...)
		tampered[circuits.CommitmentSize-1] ^= 0x01
		require.False(t, verifier.IsValid(tampered))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		require.False(t, verifier.IsValid(nil))
		require.False(t, verifier.IsValid(make([]byte, circuits.CommitmentSize)))
		require.False(t, verifier.IsValid(bytes.Repeat([]byte{0xff}, 300)))
	})

	t.Run("stake below minimum cannot be proven", func(t *testing.T) {
		_, err := keys.Prove(42, 50, 100)
		require.Error(t, err)
	})

	t.Run("verifying key round trip", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, circuits.WriteVerifyingKey(&buf, keys.VK))
		vk, err := circuits.ReadVerifyingKey(&buf)
		require.NoError(t, err)
		require.True(t, circuits.NewGroth16Verifier(vk, 100).IsValid(blob))
	})

	t.Run("proving key round trip", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, circuits.WriteProvingKey(&buf, keys.PK))
		prover, err := circuits.LoadProver(&buf)
		require.NoError(t, err)

		proof, err := prover.Prove(7, 1_000, 100)
		require.NoError(t, err)
		require.True(t, verifier.IsValid(proof))
	})
}

func TestKeeperWithGroth16Verifier(t *testing.T) {
	keys := setupKeys(t)
	k, ctx, bank := keepertest.InitializedKeeper(t, keeper.WithProofVerifierFactory(circuits.VerifierFactory(keys.VK)))

	addr := keepertest.TestAddr(1)
	keepertest.FundedTrader(t, k, ctx, bank, addr, 1_000)
	_, err := k.Stake(ctx, addr, 1_000)
	require.NoError(t, err)

	blob, err := keys.Prove(9, 1_000, types.DefaultMinConfidentialStake)
	require.NoError(t, err)

	order := []byte("order")
	commitment, err := types.ComputeOrderCommitment(types.HashSHA256, order)
	require.NoError(t, err)

	_, err = k.VerifyPriority(ctx, addr, []byte("0123456789abcdef"), commitment, 0)
	require.ErrorIs(t, err, types.ErrInvalidProof)

	_, err = k.VerifyPriority(ctx, addr, blob, commitment, 0)
	require.NoError(t, err)

	acct, err := k.GetTraderAccount(ctx, addr)
	require.NoError(t, err)
	require.Zero(t, acct.InvalidProofAttempts)
	require.Equal(t, uint64(990), acct.StakedAmount)

	// the same blob verifies for another trader with a different stake
	other := keepertest.TestAddr(2)
	keepertest.FundedTrader(t, k, ctx, bank, other, 500)
	_, err = k.Stake(ctx, other, 500)
	require.NoError(t, err)
	_, err = k.VerifyPriority(ctx, other, blob, commitment, 0)
	require.NoError(t, err)
}

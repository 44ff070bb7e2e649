package types

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashers(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{HashSHA256, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{HashKeccak256, "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewHasher(tc.name)
			require.NoError(t, err)
			require.Equal(t, tc.name, h.Name())
			require.Equal(t, tc.want, h.Hash([]byte("abc")).String())

			d, err := ComputeOrderCommitment(tc.name, []byte("abc"))
			require.NoError(t, err)
			require.Equal(t, h.Hash([]byte("abc")), d)
		})
	}

	h, err := NewHasher("")
	require.NoError(t, err)
	require.Equal(t, HashSHA256, h.Name())

	_, err = NewHasher("blake2b")
	require.Error(t, err)
}

func TestDigestEncoding(t *testing.T) {
	raw, err := hex.DecodeString("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	require.NoError(t, err)
	d, err := DigestFromBytes(raw)
	require.NoError(t, err)
	require.False(t, d.IsZero())

	bz, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"`, string(bz))

	var back Digest
	require.NoError(t, json.Unmarshal(bz, &back))
	require.Equal(t, d, back)

	_, err = DigestFromBytes(raw[:31])
	require.ErrorIs(t, err, ErrInvalidCommitment)
	_, err = DigestFromHex("zz")
	require.ErrorIs(t, err, ErrInvalidCommitment)
	require.True(t, Digest{}.IsZero())
}

func TestLengthVerifier(t *testing.T) {
	v := NewLengthVerifier(DefaultMinProofLength)
	require.False(t, v.IsValid(nil))
	require.False(t, v.IsValid(make([]byte, 9)))
	require.True(t, v.IsValid(make([]byte, 10)))
	require.True(t, v.IsValid(make([]byte, 4096)))

	require.True(t, NewLengthVerifier(0).IsValid(nil))
	require.True(t, ProofVerifierFunc(func(b []byte) bool { return len(b) == 1 }).IsValid([]byte{7}))
}

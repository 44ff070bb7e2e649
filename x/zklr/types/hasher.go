package types

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Hasher is the commitment hash used to fingerprint proofs and bind
// commit-reveal order data. Implementations must be deterministic.
type Hasher interface {
	Name() string
	Hash(data []byte) Digest
}

type sha256Hasher struct{}

func (sha256Hasher) Name() string { return HashSHA256 }

func (sha256Hasher) Hash(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

type keccak256Hasher struct{}

func (keccak256Hasher) Name() string { return HashKeccak256 }

func (keccak256Hasher) Hash(data []byte) Digest {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// NewHasher returns the hasher registered under name
func NewHasher(name string) (Hasher, error) {
	switch name {
	case HashSHA256, "":
		return sha256Hasher{}, nil
	case HashKeccak256:
		return keccak256Hasher{}, nil
	default:
		return nil, fmt.Errorf("unsupported commitment hash %q", name)
	}
}

// ComputeOrderCommitment hashes an order with the named hash function.
// Traders use it off-chain to build the commitment passed to VerifyPriority.
func ComputeOrderCommitment(hashName string, order []byte) (Digest, error) {
	h, err := NewHasher(hashName)
	if err != nil {
		return Digest{}, err
	}
	return h.Hash(order), nil
}

package types

// ProofVerifier judges whether a submitted proof blob is acceptable.
type ProofVerifier interface {
	IsValid(proof []byte) bool
}

// ProofVerifierFunc adapts a plain function to ProofVerifier
type ProofVerifierFunc func(proof []byte) bool

func (f ProofVerifierFunc) IsValid(proof []byte) bool { return f(proof) }

// LengthVerifier accepts any proof of at least MinLength bytes. It stands in
// for real proof verification.
type LengthVerifier struct {
	MinLength uint32
}

// NewLengthVerifier returns a LengthVerifier with the given minimum length
func NewLengthVerifier(minLength uint32) LengthVerifier {
	return LengthVerifier{MinLength: minLength}
}

func (v LengthVerifier) IsValid(proof []byte) bool {
	return uint64(len(proof)) >= uint64(v.MinLength)
}

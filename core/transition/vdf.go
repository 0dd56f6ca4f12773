package transition

import "github.com/epochkernel/epochkernel/shared/hashutil"

// VDFVerifier is step 1's stubbed hook per spec.md §9: verify proof
// against the previous epoch's challenge seed and extract the next
// epoch's seed. The production profile delegates this to a verifiable-
// delay-function SNARK verifier external to this kernel; this package
// ships only the stub.
type VDFVerifier interface {
	Verify(challengeSeed Digest32, proof []byte) (newSeed Digest32, err error)
}

// StubVDFVerifier always succeeds, deriving the next seed deterministically
// from the challenge seed and proof bytes via HashNode so the stub profile
// still produces a distinct seed per epoch without claiming any
// cryptographic property about proof.
type StubVDFVerifier struct{}

// Verify implements VDFVerifier.
func (StubVDFVerifier) Verify(challengeSeed Digest32, proof []byte) (Digest32, error) {
	return hashutil.HashNode(challengeSeed, hashutil.Hash(proof)), nil
}

// SignatureVerifier is named but unused by any pipeline step in this
// version, reserved for a future version that authenticates witness
// mutations directly rather than trusting the host to construct valid
// Merkle paths, per spec.md §9's stubbed-hooks note.
type SignatureVerifier interface {
	Verify(publicKey, message, signature []byte) bool
}

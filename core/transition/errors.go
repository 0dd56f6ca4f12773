// Package transition implements the epoch state-transition kernel: the
// EpochState entity, its self-committing root, and the pure ApplyEpoch
// pipeline that composes hashing, fixed-point arithmetic, canonical JSON,
// and the Merkle tree into a reproducible state-root computation.
package transition

import "github.com/pkg/errors"

// Sentinel errors for the six-variant taxonomy of spec.md §7. Every
// failure path in this package wraps exactly one of these with
// github.com/pkg/errors so a caller can test with errors.Is/errors.As
// while an operator inspecting the error with %+v sees the full causal
// chain down to the originating check.
var (
	// ErrMathOverflow covers any checked arithmetic failure, including
	// division by zero, surfaced up from shared/fixedpoint.
	ErrMathOverflow = errors.New("transition: checked arithmetic overflowed")

	// ErrInvalidSerialization covers canonical-JSON rejection: a
	// disallowed key, a duplicate key, an unknown field, a malformed
	// magnitude, out-of-order keys, a key/value binding mismatch, an
	// oversize blob, or out-of-order/duplicate/cross-pool witness keys.
	ErrInvalidSerialization = errors.New("transition: input failed canonical-serialization validation")

	// ErrInvalidMerkleWitness covers path-length overflow and
	// root-mismatch during witness reconstruction.
	ErrInvalidMerkleWitness = errors.New("transition: merkle witness is invalid")

	// ErrInvalidVdfProof covers a delegated VDF verifier rejecting the
	// proof for the epoch.
	ErrInvalidVdfProof = errors.New("transition: vdf proof rejected")

	// ErrPayloadLimitExceeded covers the combined payload count above
	// MaxPayloadsPerEpoch, or any per-pool/per-blob size limit breach.
	ErrPayloadLimitExceeded = errors.New("transition: payload limit exceeded")

	// ErrChainMismatch covers previous_root or epoch_number failing to
	// continue the chain from the input state.
	ErrChainMismatch = errors.New("transition: state does not continue the chain")
)

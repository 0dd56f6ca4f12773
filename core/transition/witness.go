package transition

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/epochkernel/epochkernel/shared/merkletree"
	"github.com/epochkernel/epochkernel/shared/params"
)

// LeafMutation is one host-supplied Merkle leaf mutation: replace the
// leaf at the position named by Path — currently containing OldValue —
// with NewValue. Key is the record identifier the mutation is claimed to
// affect; both OldValue and NewValue must themselves carry Key as a
// canonical "key" field, per spec.md §6's key/value binding rule.
type LeafMutation struct {
	Key      []byte
	OldValue []byte
	NewValue []byte
	Path     []merkletree.WitnessStep
}

// EntropyStats is the host-declared aggregate statistics record step 7
// recomputes entropy_metric_scaled from. It is the one value the kernel
// cannot independently derive from Merkle evidence; spec.md §9 names this
// explicitly and bounds it with the two checks applied in entropy.go.
type EntropyStats struct {
	ActiveBondedMagnitudeRaw string
	TotalSupplyRaw           string
	UniqueActiveValidators   uint64
	OptimalValidatorCount    uint64
}

// WitnessBundle is the full set of mutation proofs and aggregate stats a
// host supplies to one ApplyEpoch call.
//
// DecayWitnesses and BondBalanceWitnesses are this implementation's
// resolution of spec.md §9's decay-encoding Open Question: rather than
// interleaving decay and bond-balance mutations into ValidatorWitnesses,
// they are carried as their own arrays, each folded through the
// validator pool root as an independent sweep that picks up where the
// previous sweep against that pool left off (Model A extended across
// steps, not just within one step).
type WitnessBundle struct {
	ValidatorWitnesses    []LeafMutation
	DecayWitnesses        []LeafMutation
	BondBalanceWitnesses  []LeafMutation
	ImpactWitnesses       []LeafMutation
	BondWitnesses         []LeafMutation
	EntropyStats          EntropyStats
}

// validateMutationArray enforces the shared ordering, uniqueness, and
// size bounds spec.md §6 places on every witness array: strictly
// ascending keys, keys within MaxWitnessKeyBytes, and old/new value blobs
// within MaxWitnessValueBytes. seen accumulates every key observed across
// all arrays the caller passes the same map for, so the caller can also
// enforce the cross-pool uniqueness rule.
func validateMutationArray(muts []LeafMutation, seen map[string]bool) error {
	cfg := params.Config()
	var lastKey []byte
	for i, m := range muts {
		if len(m.Key) == 0 || len(m.Key) > cfg.MaxWitnessKeyBytes {
			return errors.Wrapf(ErrInvalidSerialization, "transition: witness key length %d out of bounds", len(m.Key))
		}
		if len(m.OldValue) > cfg.MaxWitnessValueBytes || len(m.NewValue) > cfg.MaxWitnessValueBytes {
			return errors.Wrap(ErrInvalidSerialization, "transition: witness value blob exceeds maximum size")
		}
		if len(m.Path) > cfg.MerkleMaxDepth {
			return errors.Wrap(ErrInvalidMerkleWitness, "transition: witness path exceeds maximum depth")
		}
		if i > 0 && bytes.Compare(m.Key, lastKey) <= 0 {
			return errors.Wrap(ErrInvalidSerialization, "transition: witness keys are not in strictly ascending order")
		}
		lastKey = m.Key

		k := string(m.Key)
		if seen[k] {
			return errors.Wrapf(ErrInvalidSerialization, "transition: key %x duplicated within or across pools", m.Key)
		}
		seen[k] = true
	}
	return nil
}

// checkKeyBinding parses key out of a record's canonical "key" field and
// confirms it equals the mutation's declared key, rejecting the
// key/value binding mismatch spec.md §6 names explicitly.
func checkKeyBinding(declaredKey []byte, recordKey string) error {
	if string(declaredKey) != recordKey {
		return errors.Wrapf(ErrInvalidSerialization, "transition: mutation key %x does not match record key %q", declaredKey, recordKey)
	}
	return nil
}

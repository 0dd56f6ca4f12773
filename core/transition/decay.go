package transition

import (
	"github.com/pkg/errors"

	"github.com/epochkernel/epochkernel/shared/fixedpoint"
)

// applyThermodynamicDecay is step 3 of spec.md §4.5: every active
// identity's balance is multiplied by the frozen DecayFactor with
// truncation toward zero, visited in strictly ascending lexicographic
// order of canonical public-key bytes (already enforced on muts by
// validateMutationArray). The kernel computes the decayed balance
// itself from each witness's authenticated OldValue rather than trusting
// a host-declared NewValue, so the decay multiplication is part of the
// consensus-critical trace rather than a host-supplied fact.
func applyThermodynamicDecay(root [32]byte, muts []LeafMutation) ([32]byte, error) {
	decayFactor := fixedpoint.DecayFactor()

	for _, m := range muts {
		oldRecord, err := ParseValidatorRecord(m.OldValue)
		if err != nil {
			return [32]byte{}, err
		}
		if err := checkKeyBinding(m.Key, oldRecord.Key); err != nil {
			return [32]byte{}, err
		}

		decayed, err := fixedpoint.MulScaled(oldRecord.Balance, decayFactor)
		if err != nil {
			return [32]byte{}, errors.Wrap(ErrMathOverflow, err.Error())
		}

		finalRecord := ValidatorRecord{
			Key:           oldRecord.Key,
			Balance:       decayed,
			Slashed:       oldRecord.Slashed,
			ExitRequested: oldRecord.ExitRequested,
		}
		finalLeaf, err := finalRecord.CanonicalBytes()
		if err != nil {
			return [32]byte{}, err
		}

		root, err = foldMutation(root, m, finalLeaf)
		if err != nil {
			return [32]byte{}, err
		}
	}

	return root, nil
}

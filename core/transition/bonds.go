package transition

import (
	"github.com/pkg/errors"

	"github.com/epochkernel/epochkernel/shared/fixedpoint"
)

// applyBondProcessing is step 5 of spec.md §4.5. For each bond, the
// kernel deducts StakedWeight from the post-decay liquid balance of the
// bonder, the validator named by the bond's Target — folded through
// validatorRoot via the matching BondBalanceWitnesses mutation — and, only if that deduction succeeds, inserts the bond into
// the bond pool via the matching BondWitnesses mutation. A bond whose
// deduction would underflow is dropped: neither root reflects it, and the
// epoch is not failed. The anti-reflexivity rule — a bond whose target is
// itself a bond identifier, including its own — is a hard reject of the
// whole epoch.
func applyBondProcessing(
	validatorRoot, bondPoolRoot [32]byte,
	bonds []BondRecord,
	balanceWitnesses, bondWitnesses []LeafMutation,
) ([32]byte, [32]byte, error) {
	if len(bonds) != len(balanceWitnesses) || len(bonds) != len(bondWitnesses) {
		return [32]byte{}, [32]byte{}, errors.Wrap(ErrInvalidSerialization, "transition: bond record and witness counts do not match")
	}

	allBondKeys := make(map[string]bool, len(bonds))
	for _, bond := range bonds {
		allBondKeys[bond.Key] = true
	}

	last := ""
	for i, bond := range bonds {
		if i > 0 && bond.Key <= last {
			return [32]byte{}, [32]byte{}, errors.Wrap(ErrInvalidSerialization, "transition: bonds are not in strictly ascending identifier order")
		}
		last = bond.Key

		if allBondKeys[bond.Target] {
			return [32]byte{}, [32]byte{}, errors.Wrapf(ErrInvalidSerialization, "transition: bond %q targets a bond identifier", bond.Key)
		}

		balMut := balanceWitnesses[i]
		if err := checkKeyBinding(balMut.Key, bond.Target); err != nil {
			return [32]byte{}, [32]byte{}, err
		}
		oldValidator, err := ParseValidatorRecord(balMut.OldValue)
		if err != nil {
			return [32]byte{}, [32]byte{}, err
		}
		if err := checkKeyBinding(balMut.Key, oldValidator.Key); err != nil {
			return [32]byte{}, [32]byte{}, err
		}

		newBalance, err := fixedpoint.Sub(oldValidator.Balance, bond.StakedWeight)
		if err != nil {
			// Insufficient balance: drop this specific bond, not the epoch.
			continue
		}

		finalValidator := ValidatorRecord{
			Key:           oldValidator.Key,
			Balance:       newBalance,
			Slashed:       oldValidator.Slashed,
			ExitRequested: oldValidator.ExitRequested,
		}
		finalValidatorLeaf, err := finalValidator.CanonicalBytes()
		if err != nil {
			return [32]byte{}, [32]byte{}, err
		}
		validatorRoot, err = foldMutation(validatorRoot, balMut, finalValidatorLeaf)
		if err != nil {
			return [32]byte{}, [32]byte{}, err
		}

		bondMut := bondWitnesses[i]
		if err := checkKeyBinding(bondMut.Key, bond.Key); err != nil {
			return [32]byte{}, [32]byte{}, err
		}
		bondLeaf, err := bond.CanonicalBytes()
		if err != nil {
			return [32]byte{}, [32]byte{}, err
		}
		bondPoolRoot, err = foldMutation(bondPoolRoot, bondMut, bondLeaf)
		if err != nil {
			return [32]byte{}, [32]byte{}, err
		}
	}

	return validatorRoot, bondPoolRoot, nil
}

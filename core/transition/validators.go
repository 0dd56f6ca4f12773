package transition

import (
	"github.com/pkg/errors"

	"github.com/epochkernel/epochkernel/shared/fixedpoint"
	"github.com/epochkernel/epochkernel/shared/params"
)

// applyValidatorSetUpdate is step 2 of spec.md §4.5: registrations and
// withdrawals folded through validator_set_root in strictly ascending
// key order, each witness verified against the root left by the
// preceding mutation (Model A).
//
// Supplemented beyond spec.md, grounded in the teacher's
// core/validators.SlashValidator and InitiateValidatorExit: a mutation
// whose new record sets slashed=true is a slashing event, and the
// kernel — not the host — computes the resulting balance via
// fixedpoint.SubSaturating rather than trusting whatever balance the
// host declared. A mutation whose new record sets exit_requested=true
// over a previously false value is a withdrawal request, subject to
// params.Config().ValidatorChurnLimit: requests beyond the limit for
// this epoch, in ascending key order, are left out of the applied
// mutation set entirely rather than erroring the epoch.
func applyValidatorSetUpdate(root [32]byte, muts []LeafMutation) ([32]byte, error) {
	churnLimit := params.Config().ValidatorChurnLimit
	churnUsed := 0

	for _, m := range muts {
		isRegistration := len(m.OldValue) == 0

		var oldRecord ValidatorRecord
		if !isRegistration {
			var err error
			oldRecord, err = ParseValidatorRecord(m.OldValue)
			if err != nil {
				return [32]byte{}, err
			}
			if err := checkKeyBinding(m.Key, oldRecord.Key); err != nil {
				return [32]byte{}, err
			}
		}

		newRecord, err := ParseValidatorRecord(m.NewValue)
		if err != nil {
			return [32]byte{}, err
		}
		if err := checkKeyBinding(m.Key, newRecord.Key); err != nil {
			return [32]byte{}, err
		}

		if isRegistration {
			if newRecord.Slashed || newRecord.ExitRequested {
				return [32]byte{}, errors.Wrap(ErrInvalidSerialization, "transition: a newly registered validator cannot start slashed or exit-requested")
			}
		}

		isWithdrawalRequest := !isRegistration && !oldRecord.ExitRequested && newRecord.ExitRequested
		if isWithdrawalRequest {
			if churnUsed >= churnLimit {
				// Deferred, not rejected: this mutation is simply left
				// out of the applied set for this epoch.
				continue
			}
			churnUsed++
		}

		finalRecord := newRecord
		isSlashEvent := !isRegistration && !oldRecord.Slashed && newRecord.Slashed
		if isSlashEvent {
			finalRecord.Balance = fixedpoint.SubSaturating(oldRecord.Balance, oldRecord.Balance)
			finalRecord.Slashed = true
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

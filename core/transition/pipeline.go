package transition

import (
	"github.com/pkg/errors"

	"github.com/epochkernel/epochkernel/shared/params"
)

// ApplyEpoch is the kernel's single public operation: a pure function of
// the shape spec.md §4.5 names, `apply_epoch(prev_state, impacts, bonds,
// witnesses, vdf_proof) -> next_state | error`. It executes the frozen
// eight-step chronological pipeline; any step that fails aborts the
// entire transition and returns a zero EpochState alongside a typed
// error, leaving prev untouched for the caller to retry or discard.
//
// verifier is the injected VDF-SNARK verifier named in spec.md §9's
// stubbed-hooks note; production callers supply a real verifier, tests
// and the stub profile use StubVDFVerifier.
func ApplyEpoch(prev EpochState, impacts []ImpactRecord, bonds []BondRecord, witnesses WitnessBundle, vdfProof []byte, verifier VDFVerifier) (EpochState, error) {
	cfg := params.Config()

	// Pre-entry bound: combined payload count, checked before any
	// hashing begins.
	if len(impacts)+len(bonds) > cfg.MaxPayloadsPerEpoch {
		return EpochState{}, errors.Wrap(ErrPayloadLimitExceeded, "transition: combined impact and bond count exceeds MaxPayloadsPerEpoch")
	}

	if err := validateWitnessBundleShape(witnesses); err != nil {
		return EpochState{}, err
	}

	// Step 1: VDF check.
	newSeed, err := verifier.Verify(prev.VdfChallengeSeed, vdfProof)
	if err != nil {
		return EpochState{}, errors.Wrap(ErrInvalidVdfProof, err.Error())
	}

	// Step 2: validator set update (registrations, withdrawals, slashing).
	validatorRoot, err := applyValidatorSetUpdate(prev.ValidatorSetRoot, witnesses.ValidatorWitnesses)
	if err != nil {
		return EpochState{}, err
	}

	// Step 3: thermodynamic decay.
	validatorRoot, err = applyThermodynamicDecay(validatorRoot, witnesses.DecayWitnesses)
	if err != nil {
		return EpochState{}, err
	}

	// Step 4: impact processing.
	impactRoot, err := applyImpactProcessing(prev.ImpactPoolRoot, impacts, witnesses.ImpactWitnesses)
	if err != nil {
		return EpochState{}, err
	}

	// Step 5: bond processing (also folds staked-weight deductions back
	// into the validator pool).
	validatorRoot, bondRoot, err := applyBondProcessing(validatorRoot, prev.BondPoolRoot, bonds, witnesses.BondBalanceWitnesses, witnesses.BondWitnesses)
	if err != nil {
		return EpochState{}, err
	}

	// Step 6: yield distribution. Stubbed in this profile: no state
	// change, interface point preserved for a future economic layer.

	// Step 7: entropy recomputation.
	entropyMetric, err := computeEntropyMetric(witnesses.EntropyStats)
	if err != nil {
		return EpochState{}, err
	}

	// Step 8: self-committing root.
	next := RootlessState{
		BondPoolRoot:        bondRoot,
		EntropyMetricScaled: entropyMetric,
		EpochNumber:         prev.EpochNumber + 1,
		ImpactPoolRoot:      impactRoot,
		KernelHash:          prev.KernelHash,
		PreviousRoot:        prev.StateRoot,
		ValidatorSetRoot:    validatorRoot,
		VdfChallengeSeed:    newSeed,
	}
	return Commit(next)
}

// validateWitnessBundleShape enforces the per-array ordering and size
// bounds of spec.md §6 on every witness array, plus the cross-pool key
// uniqueness rule scoped to the three distinct record namespaces spec.md
// §6 names: validator, impact, and bond. DecayWitnesses and
// BondBalanceWitnesses are deliberately excluded from that cross-pool
// check — both are additional sweeps over the validator namespace within
// the same epoch, so a key legitimately recurring across
// ValidatorWitnesses, DecayWitnesses, and BondBalanceWitnesses is
// expected, not a collision.
func validateWitnessBundleShape(w WitnessBundle) error {
	if err := validateMutationArray(w.DecayWitnesses, map[string]bool{}); err != nil {
		return err
	}
	if err := validateMutationArray(w.BondBalanceWitnesses, map[string]bool{}); err != nil {
		return err
	}

	crossPoolSeen := map[string]bool{}
	if err := validateMutationArray(w.ValidatorWitnesses, crossPoolSeen); err != nil {
		return err
	}
	if err := validateMutationArray(w.ImpactWitnesses, crossPoolSeen); err != nil {
		return err
	}
	if err := validateMutationArray(w.BondWitnesses, crossPoolSeen); err != nil {
		return err
	}
	return nil
}

// VerifyChainContinuity confirms next correctly continues prev: epoch_number
// strictly incremented by one and previous_root equals prev's state_root.
// ApplyEpoch's own output always satisfies this by construction; this
// helper exists for a host validating a chain it did not itself produce,
// e.g. the conformance harness replaying a persisted chain.
func VerifyChainContinuity(prev, next EpochState) error {
	if next.EpochNumber != prev.EpochNumber+1 {
		return errors.Wrap(ErrChainMismatch, "transition: epoch_number did not strictly increment by one")
	}
	if next.PreviousRoot != prev.StateRoot {
		return errors.Wrap(ErrChainMismatch, "transition: previous_root does not equal the prior state_root")
	}
	return nil
}

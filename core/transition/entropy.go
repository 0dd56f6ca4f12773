package transition

import (
	"github.com/pkg/errors"

	"github.com/epochkernel/epochkernel/shared/fixedpoint"
	"github.com/epochkernel/epochkernel/shared/params"
)

// computeEntropyMetric is step 7 of spec.md §4.5: entropy_metric_scaled
// is recomputed from the witness bundle's aggregate statistics. Per
// spec.md §9, this is the one value the kernel cannot independently
// derive from Merkle evidence; the kernel's entire trust in the host here
// is bounded by exactly the two checks below.
//
// The metric itself — the "global churn scalar" — is defined as the
// ratio of actively bonded magnitude to total supply, at scale, with the
// degenerate zero-supply case fixed at zero rather than dividing by zero.
func computeEntropyMetric(stats EntropyStats) (fixedpoint.Scaled, error) {
	active, err := fixedpoint.FromMagnitudeString(stats.ActiveBondedMagnitudeRaw)
	if err != nil {
		return fixedpoint.Scaled{}, errors.Wrap(ErrMathOverflow, err.Error())
	}
	total, err := fixedpoint.FromMagnitudeString(stats.TotalSupplyRaw)
	if err != nil {
		return fixedpoint.Scaled{}, errors.Wrap(ErrMathOverflow, err.Error())
	}

	if active.Cmp(total) > 0 {
		return fixedpoint.Scaled{}, errors.Wrap(ErrInvalidSerialization, "transition: active_bonded_magnitude exceeds total_supply")
	}
	if stats.OptimalValidatorCount != params.Config().OptimalValidatorCount {
		return fixedpoint.Scaled{}, errors.Wrap(ErrInvalidSerialization, "transition: optimal_validator_count does not match the genesis-pinned constant")
	}

	if total.IsZero() {
		return fixedpoint.Zero, nil
	}
	ratio, err := fixedpoint.DivScaled(active, total)
	if err != nil {
		return fixedpoint.Scaled{}, errors.Wrap(ErrMathOverflow, err.Error())
	}
	return ratio, nil
}

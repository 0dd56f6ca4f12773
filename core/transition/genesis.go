package transition

import (
	"github.com/epochkernel/epochkernel/shared/fixedpoint"
	"github.com/epochkernel/epochkernel/shared/hashutil"
	"github.com/epochkernel/epochkernel/shared/params"
)

// Genesis constructs epoch 0's EpochState: all three pool roots at the
// empty-tree-root constant, previous_root at the reserved genesis
// constant, entropy_metric_scaled at zero, and kernel_hash / the initial
// vdf_challenge_seed at their pinned genesis values.
func Genesis() (EpochState, error) {
	cfg := params.Config()
	rootless := RootlessState{
		BondPoolRoot:        hashutil.EmptyTreeRoot(),
		EntropyMetricScaled: fixedpoint.Zero,
		EpochNumber:         0,
		ImpactPoolRoot:      hashutil.EmptyTreeRoot(),
		KernelHash:          cfg.KernelHash,
		PreviousRoot:        cfg.GenesisRoot,
		ValidatorSetRoot:    hashutil.EmptyTreeRoot(),
		VdfChallengeSeed:    cfg.GenesisVdfChallengeSeed,
	}
	return Commit(rootless)
}

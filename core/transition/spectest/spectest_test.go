package spectest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epochkernel/epochkernel/core/transition"
	"github.com/epochkernel/epochkernel/shared/hashutil"
	"github.com/epochkernel/epochkernel/shared/params"
)

// TestPinnedVectors replays S1-S3 of spec.md §8 against the vectors in
// vectors.yaml: genesis, a single empty epoch, and a 100-epoch chain of
// empty epochs, run twice to confirm determinism.
func TestPinnedVectors(t *testing.T) {
	vecs, err := Load()
	require.NoError(t, err)

	require.Equal(t, vecs.EmptyTreeRoot, hashutil.EmptyTreeRoot(), "empty_tree_root vector must equal hash_leaf(empty)")

	genesis, err := transition.Genesis()
	require.NoError(t, err)
	require.Equal(t, vecs.GenesisStateRoot, genesis.StateRoot)

	// An empty epoch: no witness mutations, and entropy stats of zero
	// supply carrying the pinned optimal validator count.
	emptyBundle := transition.WitnessBundle{
		EntropyStats: transition.EntropyStats{
			ActiveBondedMagnitudeRaw: "0",
			TotalSupplyRaw:           "0",
			OptimalValidatorCount:    params.Config().OptimalValidatorCount,
		},
	}

	epoch1, err := transition.ApplyEpoch(genesis, nil, nil, emptyBundle, vecs.StubVdfProof, transition.StubVDFVerifier{})
	require.NoError(t, err)
	require.Equal(t, vecs.Epoch1StateRoot, epoch1.StateRoot)
	require.Equal(t, genesis.StateRoot, epoch1.PreviousRoot)
	require.Equal(t, uint64(1), epoch1.EpochNumber)

	replay := func() transition.EpochState {
		prev, cur := genesis, genesis
		for i := 0; i < 100; i++ {
			var err error
			cur, err = transition.ApplyEpoch(prev, nil, nil, emptyBundle, vecs.StubVdfProof, transition.StubVDFVerifier{})
			require.NoError(t, err)
			require.NoError(t, transition.VerifyChainContinuity(prev, cur))
			prev = cur
		}
		return cur
	}

	run1 := replay()
	run2 := replay()
	require.Equal(t, vecs.Epoch100StateRoot, run1.StateRoot)
	require.Equal(t, run1.StateRoot, run2.StateRoot, "replaying the 100-epoch chain twice must be byte-identical")
}

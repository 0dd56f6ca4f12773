package transition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epochkernel/epochkernel/shared/merkletree"
	"github.com/epochkernel/epochkernel/shared/params"
)

func TestApplyEpoch_RejectsCombinedPayloadCountOverLimit(t *testing.T) {
	genesis, err := Genesis()
	require.NoError(t, err)

	impacts := make([]ImpactRecord, params.Config().MaxPayloadsPerEpoch+1)
	for i := range impacts {
		impacts[i] = ImpactRecord{Key: string(rune('a' + i%26)), Payload: "x"}
	}

	_, err = ApplyEpoch(genesis, impacts, nil, WitnessBundle{}, nil, StubVDFVerifier{})
	require.ErrorIs(t, err, ErrPayloadLimitExceeded)
}

func TestApplyEpoch_RejectsWitnessPathExceedingMaxDepth(t *testing.T) {
	genesis, err := Genesis()
	require.NoError(t, err)

	overDepth := make([]merkletree.WitnessStep, params.Config().MerkleMaxDepth+1)
	for i := range overDepth {
		overDepth[i] = merkletree.WitnessStep{Position: merkletree.SiblingRight}
	}
	bundle := WitnessBundle{
		ValidatorWitnesses: []LeafMutation{{Key: []byte("validator-a"), Path: overDepth}},
	}

	_, err = ApplyEpoch(genesis, nil, nil, bundle, nil, StubVDFVerifier{})
	require.ErrorIs(t, err, ErrInvalidMerkleWitness)
}

func TestApplyEpoch_RejectsKeyCollisionAcrossValidatorAndImpactPools(t *testing.T) {
	genesis, err := Genesis()
	require.NoError(t, err)

	bundle := WitnessBundle{
		ValidatorWitnesses: []LeafMutation{{Key: []byte("shared-key")}},
		ImpactWitnesses:    []LeafMutation{{Key: []byte("shared-key")}},
	}

	_, err = ApplyEpoch(genesis, nil, nil, bundle, nil, StubVDFVerifier{})
	require.ErrorIs(t, err, ErrInvalidSerialization)
}

// TestApplyEpoch_FullPipelineWithRegistrationAndImpact exercises a
// non-empty epoch end to end: one validator registration and one impact
// insertion against a genesis state, then confirms the resulting roots
// match independently rebuilt trees and the chain-continuity fields are
// correctly set.
func TestApplyEpoch_FullPipelineWithRegistrationAndImpact(t *testing.T) {
	genesis, err := Genesis()
	require.NoError(t, err)

	validatorTree, err := merkletree.New([][]byte{{}})
	require.NoError(t, err)
	require.Equal(t, genesis.ValidatorSetRoot, validatorTree.Root())
	valPath, err := validatorTree.Witness(0)
	require.NoError(t, err)

	impactTree, err := merkletree.New([][]byte{{}})
	require.NoError(t, err)
	require.Equal(t, genesis.ImpactPoolRoot, impactTree.Root())
	impactPath, err := impactTree.Witness(0)
	require.NoError(t, err)

	newValidator := ValidatorRecord{Key: "validator-a", Balance: mustScaled(t, "1000000000000")}
	newImpact := ImpactRecord{Key: "impact-a", Payload: "payload"}

	bundle := WitnessBundle{
		ValidatorWitnesses: []LeafMutation{{
			Key:      []byte("validator-a"),
			OldValue: nil,
			NewValue: mustRecordBytes(t, newValidator),
			Path:     valPath,
		}},
		ImpactWitnesses: []LeafMutation{{
			Key:      []byte("impact-a"),
			OldValue: nil,
			Path:     impactPath,
		}},
		EntropyStats: EntropyStats{
			ActiveBondedMagnitudeRaw: "0",
			TotalSupplyRaw:           "0",
			OptimalValidatorCount:    params.Config().OptimalValidatorCount,
		},
	}

	next, err := ApplyEpoch(genesis, []ImpactRecord{newImpact}, nil, bundle, nil, StubVDFVerifier{})
	require.NoError(t, err)

	require.NoError(t, VerifyChainContinuity(genesis, next))
	require.Equal(t, uint64(1), next.EpochNumber)

	wantValidatorTree, err := validatorTree.Insert(0, mustRecordBytes(t, newValidator))
	require.NoError(t, err)
	require.Equal(t, wantValidatorTree.Root(), next.ValidatorSetRoot)

	wantImpactTree, err := impactTree.Insert(0, mustImpactBytes(t, newImpact))
	require.NoError(t, err)
	require.Equal(t, wantImpactTree.Root(), next.ImpactPoolRoot)

	require.Equal(t, genesis.BondPoolRoot, next.BondPoolRoot, "untouched bond pool carries its root forward unchanged")
	require.True(t, next.EntropyMetricScaled.IsZero())
}

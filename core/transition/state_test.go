package transition

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommit_IsDeterministicAndSelfExcluding(t *testing.T) {
	rl := RootlessState{
		EpochNumber: 7,
		KernelHash:  [32]byte{0x01},
	}
	first, err := Commit(rl)
	require.NoError(t, err)
	second, err := Commit(rl)
	require.NoError(t, err)
	require.Equal(t, first.StateRoot, second.StateRoot, "committing the same root-less state twice must be byte-identical")

	preimage, err := rl.CanonicalBytes()
	require.NoError(t, err)
	require.NotContains(t, string(preimage), "state_root", "the state_root pre-image never mentions state_root itself")
}

func TestEpochState_RoundTripsThroughCanonicalBytes(t *testing.T) {
	rl := RootlessState{
		EpochNumber:      3,
		BondPoolRoot:     [32]byte{0xaa},
		ImpactPoolRoot:   [32]byte{0xbb},
		ValidatorSetRoot: [32]byte{0xcc},
		VdfChallengeSeed: [32]byte{0xdd},
		PreviousRoot:     [32]byte{0xee},
		KernelHash:       [32]byte{0xff},
	}
	committed, err := Commit(rl)
	require.NoError(t, err)

	wire, err := committed.CanonicalBytes()
	require.NoError(t, err)

	decoded, err := ParseEpochState(wire)
	require.NoError(t, err)
	require.Equal(t, committed, decoded)
}

func TestParseEpochState_RejectsUnknownField(t *testing.T) {
	base := RootlessState{EpochNumber: 1}
	committed, err := Commit(base)
	require.NoError(t, err)
	wire, err := committed.CanonicalBytes()
	require.NoError(t, err)

	// Append a field the schema does not name; "zzz" sorts after every
	// known key, so only the unknown-field rule can reject it.
	withUnknown := append(append([]byte{}, wire[:len(wire)-1]...), []byte(`,"zzz":"1"}`)...)
	_, err = ParseEpochState(withUnknown)
	require.ErrorIs(t, err, ErrInvalidSerialization)

	// A payload missing every required field is rejected as well.
	_, err = ParseEpochState([]byte(`{}`))
	require.Error(t, err)
}

package merkletree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epochkernel/epochkernel/shared/hashutil"
	"github.com/epochkernel/epochkernel/shared/params"
)

func TestNew_EmptyTreeIsEmptyTreeRoot(t *testing.T) {
	tree, err := New(nil)
	require.NoError(t, err)
	require.Equal(t, hashutil.EmptyTreeRoot(), tree.Root())
}

// TestNew_ThreeLeafPinnedVector pins the rightmost-duplication padding
// rule for an odd leaf count: three leaves pad to four by duplicating the
// third leaf's hash at level 0, then pair-hash up to a single root.
func TestNew_ThreeLeafPinnedVector(t *testing.T) {
	leaves := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	tree, err := New(leaves)
	require.NoError(t, err)

	h0 := hashutil.HashLeaf([]byte("a"))
	h1 := hashutil.HashLeaf([]byte("b"))
	h2 := hashutil.HashLeaf([]byte("c"))
	h3 := h2 // rightmost duplication

	left := hashutil.HashNode(h0, h1)
	right := hashutil.HashNode(h2, h3)
	want := hashutil.HashNode(left, right)

	require.Equal(t, want, tree.Root())
}

func TestNew_SingleLeafRootEqualsItsHashLeaf(t *testing.T) {
	tree, err := New([][]byte{[]byte("solo")})
	require.NoError(t, err)
	require.Equal(t, hashutil.HashLeaf([]byte("solo")), tree.Root())
}

func TestWitness_RoundTripsForEveryLeaf(t *testing.T) {
	leaves := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d"), []byte("e")}
	tree, err := New(leaves)
	require.NoError(t, err)

	for i, leaf := range leaves {
		witness, err := tree.Witness(i)
		require.NoError(t, err)
		require.True(t, VerifyWitness(tree.Root(), leaf, witness, params.Config().MerkleMaxDepth))
	}
}

func TestVerifyWitness_RejectsWrongLeaf(t *testing.T) {
	leaves := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}
	tree, err := New(leaves)
	require.NoError(t, err)

	witness, err := tree.Witness(0)
	require.NoError(t, err)
	require.False(t, VerifyWitness(tree.Root(), []byte("wrong"), witness, params.Config().MerkleMaxDepth))
}

func TestVerifyWitness_RejectsOversizedWitness(t *testing.T) {
	oversized := make([]WitnessStep, 41)
	require.False(t, VerifyWitness([32]byte{}, []byte("x"), oversized, 40))
}

func TestWitness_OutOfRangeIndex(t *testing.T) {
	tree, err := New([][]byte{[]byte("a")})
	require.NoError(t, err)
	_, err = tree.Witness(5)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

// TestInsert_EquivalentToFullRebuild pins S8: the incremental Insert path
// must produce a bit-identical root to rebuilding from scratch after the
// same mutation.
func TestInsert_EquivalentToFullRebuild(t *testing.T) {
	original := [][]byte{
		[]byte("alpha"), []byte("bravo"), []byte("charlie"),
		[]byte("delta"), []byte("echo"),
	}

	tree, err := New(original)
	require.NoError(t, err)

	mutated, err := tree.Insert(4, []byte("echo-replaced"))
	require.NoError(t, err)

	rebuiltLeaves := append([][]byte{}, original...)
	rebuiltLeaves[4] = []byte("echo-replaced")
	rebuilt, err := New(rebuiltLeaves)
	require.NoError(t, err)

	require.Equal(t, rebuilt.Root(), mutated.Root())
}

func TestInsert_MiddleLeafDoesNotDisturbPadding(t *testing.T) {
	original := [][]byte{
		[]byte("alpha"), []byte("bravo"), []byte("charlie"),
	}
	tree, err := New(original)
	require.NoError(t, err)

	mutated, err := tree.Insert(1, []byte("bravo-replaced"))
	require.NoError(t, err)

	rebuiltLeaves := append([][]byte{}, original...)
	rebuiltLeaves[1] = []byte("bravo-replaced")
	rebuilt, err := New(rebuiltLeaves)
	require.NoError(t, err)

	require.Equal(t, rebuilt.Root(), mutated.Root())
}

func TestInsert_OutOfRangeIndex(t *testing.T) {
	tree, err := New([][]byte{[]byte("a")})
	require.NoError(t, err)
	_, err = tree.Insert(9, []byte("x"))
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestInsert_OriginalTreeUnaffected(t *testing.T) {
	original := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	tree, err := New(original)
	require.NoError(t, err)
	originalRoot := tree.Root()

	_, err = tree.Insert(0, []byte("replaced"))
	require.NoError(t, err)

	require.Equal(t, originalRoot, tree.Root())
}

func TestDepth_PracticalTreeStaysWithinMaxDepth(t *testing.T) {
	// A tree deep enough to exceed the 40-level bound would need more than
	// 2^40 leaves, which is impractical to allocate, so this test only
	// confirms that a tree of a practically reachable size (1024 leaves)
	// builds and stays within MerkleMaxDepth.
	leaves := make([][]byte, 1<<10)
	for i := range leaves {
		leaves[i] = []byte{byte(i), byte(i >> 8)}
	}
	tree, err := New(leaves)
	require.NoError(t, err)
	require.LessOrEqual(t, tree.Depth(), params.Config().MerkleMaxDepth)
}

// Package merkletree implements the kernel's commitment structure: a
// domain-separated, perfect binary, rightmost-duplication-padded Merkle
// tree over canonically-serialized records. It is grounded in the
// teacher's shared/trieutil.MerkleTrie, adapted from zero-hash padding to
// the rightmost-duplication padding this protocol specifies, and extended
// with an incremental leaf-replacement path (Insert) that recomputes only
// the nodes above the replaced leaf. The transition package does not call
// Insert; its pool mutations fold witness paths through ReconstructRoot.
package merkletree

import (
	"github.com/pkg/errors"

	"github.com/epochkernel/epochkernel/shared/hashutil"
	"github.com/epochkernel/epochkernel/shared/params"
)

// ErrDepthExceeded is returned when a tree would require more than
// params.Config().MerkleMaxDepth levels to reach a single root, or when a
// witness longer than that bound is presented for verification.
var ErrDepthExceeded = errors.New("merkletree: tree or witness exceeds maximum depth")

// ErrIndexOutOfRange is returned by Witness and Insert when the supplied
// leaf index does not name an existing leaf.
var ErrIndexOutOfRange = errors.New("merkletree: leaf index out of range")

// Tree is an immutable-by-convention Merkle tree: all mutating operations
// (Insert) return a new *Tree rather than mutating in place, so a caller
// holding a reference to an earlier tree keeps observing its original
// root.
type Tree struct {
	original  [][]byte  // leaf preimages, in the order the tree was built from.
	levels    [][][32]byte
	prePadLen []int // length of each level before rightmost-duplication padding.
}

// New builds a tree from leaf preimages, already ordered by the caller in
// ascending byte-lexicographic order of their canonical serializations (as
// required by the specification; this package does not re-sort). An empty
// preimage slice yields the single-constant empty-tree root.
func New(preimages [][]byte) (*Tree, error) {
	if len(preimages) == 0 {
		return &Tree{
			original:  nil,
			levels:    [][][32]byte{{hashutil.EmptyTreeRoot()}},
			prePadLen: []int{1},
		}, nil
	}

	leafHashes := make([][32]byte, len(preimages))
	for i, p := range preimages {
		leafHashes[i] = hashutil.HashLeaf(p)
	}

	levels, prePadLen, err := buildLevels(leafHashes)
	if err != nil {
		return nil, err
	}

	orig := make([][]byte, len(preimages))
	for i, p := range preimages {
		orig[i] = append([]byte(nil), p...)
	}

	return &Tree{original: orig, levels: levels, prePadLen: prePadLen}, nil
}

// Root returns the tree's top-most digest.
func (t *Tree) Root() [32]byte {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// LeafCount returns the number of real (unpadded) leaves the tree was
// built from.
func (t *Tree) LeafCount() int {
	return len(t.original)
}

// Depth returns the number of levels between the leaf layer and the root.
func (t *Tree) Depth() int {
	return len(t.levels) - 1
}

func buildLevels(leafHashes [][32]byte) ([][][32]byte, []int, error) {
	levels := make([][][32]byte, 0, 8)
	prePadLen := make([]int, 0, 8)

	cur := leafHashes
	for {
		prePadLen = append(prePadLen, len(cur))
		padded := cur
		if len(padded) > 1 && len(padded)%2 == 1 {
			padded = append(append([][32]byte{}, padded...), padded[len(padded)-1])
		}
		levels = append(levels, padded)

		if len(levels)-1 > params.Config().MerkleMaxDepth {
			return nil, nil, ErrDepthExceeded
		}
		if len(padded) == 1 {
			return levels, prePadLen, nil
		}

		next := make([][32]byte, len(padded)/2)
		for j := 0; j < len(padded); j += 2 {
			next[j/2] = hashutil.HashNode(padded[j], padded[j+1])
		}
		cur = next
	}
}

// Insert replaces the leaf preimage at index and returns a new Tree
// reflecting the change, recomputing only the sibling path from that leaf
// to the root (including any rightmost-duplication slots that mirror it)
// rather than rebuilding the tree from scratch. The result is defined to
// be bit-identical to New(preimages-with-index-replaced).
func (t *Tree) Insert(index int, preimage []byte) (*Tree, error) {
	if index < 0 || index >= len(t.original) {
		return nil, ErrIndexOutOfRange
	}

	out := t.clone()
	out.original[index] = append([]byte(nil), preimage...)
	newHash := hashutil.HashLeaf(preimage)
	out.levels[0][index] = newHash

	changed := map[int]bool{index: true}
	propagateDuplicate(out, 0, changed)

	for d := 0; d+1 < len(out.levels); d++ {
		parents := map[int]bool{}
		for idx := range changed {
			var left, right [32]byte
			if idx%2 == 0 {
				left = out.levels[d][idx]
				right = out.levels[d][idx+1]
			} else {
				left = out.levels[d][idx-1]
				right = out.levels[d][idx]
			}
			parent := idx / 2
			out.levels[d+1][parent] = hashutil.HashNode(left, right)
			parents[parent] = true
		}
		propagateDuplicate(out, d+1, parents)
		changed = parents
	}

	return out, nil
}

// propagateDuplicate extends changed with the rightmost-duplication slot
// at level d, if that level is odd-cardinality before padding and the slot
// it duplicates is among the positions that just changed.
func propagateDuplicate(t *Tree, level int, changed map[int]bool) {
	prePad := t.prePadLen[level]
	if prePad == 1 || prePad%2 != 1 {
		return
	}
	source := prePad - 1
	if !changed[source] {
		return
	}
	dup := prePad
	t.levels[level][dup] = t.levels[level][source]
	changed[dup] = true
}

func (t *Tree) clone() *Tree {
	out := &Tree{
		original:  make([][]byte, len(t.original)),
		levels:    make([][][32]byte, len(t.levels)),
		prePadLen: append([]int(nil), t.prePadLen...),
	}
	for i, p := range t.original {
		out.original[i] = append([]byte(nil), p...)
	}
	for i, lvl := range t.levels {
		out.levels[i] = append([][32]byte(nil), lvl...)
	}
	return out
}

package transition

import (
	"github.com/pkg/errors"

	"github.com/epochkernel/epochkernel/shared/hashutil"
	"github.com/epochkernel/epochkernel/shared/merkletree"
	"github.com/epochkernel/epochkernel/shared/params"
)

// foldMutation is the Model-A primitive every pool-mutation step in this
// package builds on: verify that the leaf named by m.Path currently holds
// m.OldValue against root, then fold newLeaf (the post-mutation leaf
// bytes this call computes, not necessarily m.NewValue verbatim — decay
// and bond-balance deduction recompute the leaf themselves) through the
// same path to produce the pool's next root.
//
// m.Path is the witness as it stood against root before this mutation; it
// is reused unchanged to fold the replacement leaf, which is only valid
// because a pool mutation here always replaces an existing leaf's content
// in place and never changes the tree's shape.
func foldMutation(root [32]byte, m LeafMutation, newLeaf []byte) ([32]byte, error) {
	maxDepth := params.Config().MerkleMaxDepth
	if len(m.Path) > maxDepth {
		return [32]byte{}, errors.Wrap(ErrInvalidMerkleWitness, "transition: witness path exceeds maximum depth")
	}

	oldHash := hashutil.HashLeaf(m.OldValue)
	gotRoot, ok := merkletree.ReconstructRoot(oldHash, m.Path, maxDepth)
	if !ok || gotRoot != root {
		return [32]byte{}, errors.Wrap(ErrInvalidMerkleWitness, "transition: witness does not reconstruct the current pool root")
	}

	newHash := hashutil.HashLeaf(newLeaf)
	nextRoot, ok := merkletree.ReconstructRoot(newHash, m.Path, maxDepth)
	if !ok {
		return [32]byte{}, errors.Wrap(ErrInvalidMerkleWitness, "transition: witness path invalid while folding replacement leaf")
	}
	return nextRoot, nil
}

// foldRecordPool folds a sequence of record insertions/updates into a
// pool root: keys[i] must equal witnesses[i].Key and the sequence must be
// strictly ascending, mirroring the shared ordering rule spec.md §6
// places on every pool. leaves[i] is the exact canonical leaf bytes the
// kernel computed for record i, folded in place of witnesses[i].OldValue.
func foldRecordPool(root [32]byte, keys []string, leaves [][]byte, witnesses []LeafMutation) ([32]byte, error) {
	if len(keys) != len(witnesses) {
		return [32]byte{}, errors.Wrap(ErrInvalidSerialization, "transition: record count does not match witness count")
	}
	last := ""
	for i, key := range keys {
		if i > 0 && key <= last {
			return [32]byte{}, errors.Wrap(ErrInvalidSerialization, "transition: pool entries are not in strictly ascending identifier order")
		}
		last = key
		if err := checkKeyBinding(witnesses[i].Key, key); err != nil {
			return [32]byte{}, err
		}
		var err error
		root, err = foldMutation(root, witnesses[i], leaves[i])
		if err != nil {
			return [32]byte{}, err
		}
	}
	return root, nil
}

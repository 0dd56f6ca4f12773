package transition

import "github.com/pkg/errors"

// applyImpactProcessing is step 4 of spec.md §4.5: impacts are
// deduplicated by canonical identifier (a duplicate within the epoch is a
// hard reject, not a drop), then inserted into the impact pool in
// ascending identifier order via the matching ImpactWitnesses mutation.
func applyImpactProcessing(root [32]byte, impacts []ImpactRecord, witnesses []LeafMutation) ([32]byte, error) {
	seen := make(map[string]bool, len(impacts))
	keys := make([]string, len(impacts))
	leaves := make([][]byte, len(impacts))

	for i, rec := range impacts {
		if seen[rec.Key] {
			return [32]byte{}, errors.Wrapf(ErrInvalidSerialization, "transition: duplicate impact identifier %q within epoch", rec.Key)
		}
		seen[rec.Key] = true

		leaf, err := rec.CanonicalBytes()
		if err != nil {
			return [32]byte{}, err
		}
		keys[i] = rec.Key
		leaves[i] = leaf
	}

	return foldRecordPool(root, keys, leaves, witnesses)
}

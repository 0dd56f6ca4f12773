// Package spectest loads the pinned constitutional vectors of spec.md §6
// from vectors.yaml and replays the deterministic empty-epoch chain
// against them, following the teacher's spectest convention of keeping
// pinned fixtures in a reviewable YAML file rather than inlining them
// only as Go string literals.
package spectest

import (
	_ "embed"
	"encoding/hex"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

//go:embed vectors.yaml
var vectorsYAML []byte

// Vectors holds the decoded pinned digests.
type Vectors struct {
	GenesisStateRoot [32]byte
	Epoch1StateRoot  [32]byte
	Epoch100StateRoot [32]byte
	EmptyTreeRoot    [32]byte
	StubVdfProof     []byte
}

type rawVectors struct {
	GenesisStateRoot string `yaml:"genesis_state_root"`
	Epoch1StateRoot  string `yaml:"epoch_1_state_root"`
	Epoch100StateRoot string `yaml:"epoch_100_state_root"`
	EmptyTreeRoot    string `yaml:"empty_tree_root"`
	StubVdfProof     string `yaml:"stub_vdf_proof"`
}

// Load decodes vectors.yaml into Vectors. Per spec.md §6's own caveat, any
// pinned literal wider than 64 hex characters is truncated to the
// leading 64 before comparison.
func Load() (Vectors, error) {
	var raw rawVectors
	if err := yaml.Unmarshal(vectorsYAML, &raw); err != nil {
		return Vectors{}, errors.Wrap(err, "spectest: could not unmarshal vectors.yaml")
	}

	out := Vectors{}
	var err error
	if out.GenesisStateRoot, err = decodeDigest(raw.GenesisStateRoot); err != nil {
		return Vectors{}, err
	}
	if out.Epoch1StateRoot, err = decodeDigest(raw.Epoch1StateRoot); err != nil {
		return Vectors{}, err
	}
	if out.Epoch100StateRoot, err = decodeDigest(raw.Epoch100StateRoot); err != nil {
		return Vectors{}, err
	}
	if out.EmptyTreeRoot, err = decodeDigest(raw.EmptyTreeRoot); err != nil {
		return Vectors{}, err
	}
	out.StubVdfProof, err = hex.DecodeString(raw.StubVdfProof)
	if err != nil {
		return Vectors{}, errors.Wrap(err, "spectest: stub_vdf_proof is not valid hex")
	}
	return out, nil
}

func decodeDigest(s string) ([32]byte, error) {
	if len(s) > 64 {
		s = s[:64]
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return [32]byte{}, errors.Errorf("spectest: %q is not a 32-byte hex digest", s)
	}
	var out [32]byte
	copy(out[:], raw)
	return out, nil
}

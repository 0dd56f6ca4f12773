package transition

import (
	"encoding/hex"

	"github.com/pkg/errors"

	"github.com/epochkernel/epochkernel/shared/canonicaljson"
	"github.com/epochkernel/epochkernel/shared/fixedpoint"
	"github.com/epochkernel/epochkernel/shared/hashutil"
)

// Digest32 is the 32-byte commitment type shared by every root and seed
// field in EpochState.
type Digest32 = [32]byte

// RootlessState is the eight-field view of EpochState that excludes
// StateRoot. It is the only shape the canonical-JSON encoder in this
// package ever sees when computing a state_root pre-image, per spec.md
// §9's "root-bearing and root-less views are distinct value shapes"
// guidance: there is no conditional inside a shared encoder that decides
// whether to include the root field, because RootlessState's type simply
// has no such field to include.
type RootlessState struct {
	BondPoolRoot        Digest32
	EntropyMetricScaled fixedpoint.Scaled
	EpochNumber         uint64
	ImpactPoolRoot      Digest32
	KernelHash          Digest32
	PreviousRoot        Digest32
	ValidatorSetRoot    Digest32
	VdfChallengeSeed    Digest32
}

// EpochState is RootlessState plus the StateRoot commitment over it.
// Commit is the only place in the codebase that computes StateRoot from a
// RootlessState, and it is always the last step of ApplyEpoch;
// ParseEpochState decodes a persisted StateRoot without recomputing it.
type EpochState struct {
	RootlessState
	StateRoot Digest32
}

var rootlessStateSchema = canonicaljson.Object(map[string]*canonicaljson.Schema{
	"bond_pool_root":        canonicaljson.StringSchema(),
	"entropy_metric_scaled": canonicaljson.MagnitudeSchema(),
	"epoch_number":          canonicaljson.MagnitudeSchema(),
	"impact_pool_root":      canonicaljson.StringSchema(),
	"kernel_hash":           canonicaljson.StringSchema(),
	"previous_root":         canonicaljson.StringSchema(),
	"validator_set_root":    canonicaljson.StringSchema(),
	"vdf_challenge_seed":    canonicaljson.StringSchema(),
})

// EpochStateSchema additionally admits state_root, for decoding the
// nine-field persisted wire form named in spec.md §6.
var EpochStateSchema = canonicaljson.Object(map[string]*canonicaljson.Schema{
	"bond_pool_root":        canonicaljson.StringSchema(),
	"entropy_metric_scaled": canonicaljson.MagnitudeSchema(),
	"epoch_number":          canonicaljson.MagnitudeSchema(),
	"impact_pool_root":      canonicaljson.StringSchema(),
	"kernel_hash":           canonicaljson.StringSchema(),
	"previous_root":         canonicaljson.StringSchema(),
	"state_root":            canonicaljson.StringSchema(),
	"validator_set_root":    canonicaljson.StringSchema(),
	"vdf_challenge_seed":    canonicaljson.StringSchema(),
})

// CanonicalValue builds the canonical-JSON Value for the eight root-less
// fields, in the shape rootlessStateSchema expects.
func (s RootlessState) CanonicalValue() canonicaljson.Value {
	return canonicaljson.Obj(map[string]canonicaljson.Value{
		"bond_pool_root":        digestValue(s.BondPoolRoot),
		"entropy_metric_scaled": canonicaljson.Magnitude(s.EntropyMetricScaled.Raw()),
		"epoch_number":          canonicaljson.Magnitude(uintToDecimal(s.EpochNumber)),
		"impact_pool_root":      digestValue(s.ImpactPoolRoot),
		"kernel_hash":           digestValue(s.KernelHash),
		"previous_root":         digestValue(s.PreviousRoot),
		"validator_set_root":    digestValue(s.ValidatorSetRoot),
		"vdf_challenge_seed":    digestValue(s.VdfChallengeSeed),
	})
}

// CanonicalBytes returns the canonical-JSON pre-image of StateRoot: the
// byte-unique encoding of the eight non-root fields, keys in ascending
// order, no whitespace.
func (s RootlessState) CanonicalBytes() ([]byte, error) {
	b, err := canonicaljson.Marshal(s.CanonicalValue())
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSerialization, err.Error())
	}
	return b, nil
}

// Commit computes StateRoot from s and returns the full nine-field
// EpochState. It is the sole place StateRoot is ever computed.
func Commit(s RootlessState) (EpochState, error) {
	b, err := s.CanonicalBytes()
	if err != nil {
		return EpochState{}, err
	}
	return EpochState{RootlessState: s, StateRoot: hashutil.Hash(b)}, nil
}

// CanonicalValue builds the canonical-JSON Value for the full nine-field
// persisted form, used only for on-the-wire serialization — never as a
// state_root pre-image.
func (s EpochState) CanonicalValue() canonicaljson.Value {
	fields := map[string]canonicaljson.Value{
		"state_root": digestValue(s.StateRoot),
	}
	for k, v := range s.RootlessState.CanonicalValue().Fields() {
		fields[k] = v
	}
	return canonicaljson.Obj(fields)
}

// CanonicalBytes returns the nine-field persisted encoding of s.
func (s EpochState) CanonicalBytes() ([]byte, error) {
	b, err := canonicaljson.Marshal(s.CanonicalValue())
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSerialization, err.Error())
	}
	return b, nil
}

// ParseRootlessState decodes the eight-field pre-image form.
func ParseRootlessState(data []byte) (RootlessState, error) {
	v, err := canonicaljson.Parse(data, rootlessStateSchema)
	if err != nil {
		return RootlessState{}, errors.Wrap(ErrInvalidSerialization, err.Error())
	}
	return rootlessStateFromValue(v)
}

// ParseEpochState decodes the nine-field persisted form.
func ParseEpochState(data []byte) (EpochState, error) {
	v, err := canonicaljson.Parse(data, EpochStateSchema)
	if err != nil {
		return EpochState{}, errors.Wrap(ErrInvalidSerialization, err.Error())
	}
	rl, err := rootlessStateFromValue(v)
	if err != nil {
		return EpochState{}, err
	}
	rootField, _ := v.Field("state_root")
	root, err := parseDigest(rootField.Text())
	if err != nil {
		return EpochState{}, err
	}
	return EpochState{RootlessState: rl, StateRoot: root}, nil
}

func rootlessStateFromValue(v canonicaljson.Value) (RootlessState, error) {
	var s RootlessState
	var err error

	s.BondPoolRoot, err = fieldDigest(v, "bond_pool_root")
	if err != nil {
		return RootlessState{}, err
	}
	s.ImpactPoolRoot, err = fieldDigest(v, "impact_pool_root")
	if err != nil {
		return RootlessState{}, err
	}
	s.KernelHash, err = fieldDigest(v, "kernel_hash")
	if err != nil {
		return RootlessState{}, err
	}
	s.PreviousRoot, err = fieldDigest(v, "previous_root")
	if err != nil {
		return RootlessState{}, err
	}
	s.ValidatorSetRoot, err = fieldDigest(v, "validator_set_root")
	if err != nil {
		return RootlessState{}, err
	}
	s.VdfChallengeSeed, err = fieldDigest(v, "vdf_challenge_seed")
	if err != nil {
		return RootlessState{}, err
	}

	entropyField, _ := v.Field("entropy_metric_scaled")
	s.EntropyMetricScaled, err = fixedpoint.FromMagnitudeString(entropyField.Text())
	if err != nil {
		return RootlessState{}, errors.Wrap(ErrMathOverflow, err.Error())
	}

	epochField, _ := v.Field("epoch_number")
	epochNum, err := decimalToUint(epochField.Text())
	if err != nil {
		return RootlessState{}, err
	}
	s.EpochNumber = epochNum

	return s, nil
}

func fieldDigest(v canonicaljson.Value, key string) (Digest32, error) {
	f, ok := v.Field(key)
	if !ok {
		return Digest32{}, errors.Wrapf(ErrInvalidSerialization, "transition: missing field %q", key)
	}
	return parseDigest(f.Text())
}

func digestValue(d Digest32) canonicaljson.Value {
	return canonicaljson.Str(hex.EncodeToString(d[:]))
}

func parseDigest(s string) (Digest32, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return Digest32{}, errors.Wrapf(ErrInvalidSerialization, "transition: %q is not a 32-byte hex digest", s)
	}
	var out Digest32
	copy(out[:], raw)
	return out, nil
}

func uintToDecimal(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func decimalToUint(s string) (uint64, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, errors.Wrapf(ErrInvalidSerialization, "transition: %q is not a canonical non-negative decimal", s)
	}
	var v uint64
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			return 0, errors.Wrapf(ErrInvalidSerialization, "transition: %q is not a canonical non-negative decimal", s)
		}
		next := v*10 + uint64(c-'0')
		if next < v {
			return 0, errors.Wrap(ErrMathOverflow, "transition: epoch_number overflowed uint64")
		}
		v = next
	}
	return v, nil
}

package transition

import (
	"github.com/pkg/errors"

	"github.com/epochkernel/epochkernel/shared/canonicaljson"
	"github.com/epochkernel/epochkernel/shared/fixedpoint"
)

// Boolean-flag fields in canonical JSON are carried as the strings
// "true"/"false" rather than a JSON boolean literal, since the grammar
// admits only objects, arrays, strings, and magnitude-strings.
const (
	flagTrue  = "true"
	flagFalse = "false"
)

func flagOf(b bool) string {
	if b {
		return flagTrue
	}
	return flagFalse
}

func parseFlag(s string) (bool, error) {
	switch s {
	case flagTrue:
		return true, nil
	case flagFalse:
		return false, nil
	default:
		return false, errors.Wrapf(ErrInvalidSerialization, "transition: %q is not a canonical boolean flag", s)
	}
}

// ValidatorRecord is the leaf content of the validator pool: one active
// identity's liquid balance and status flags.
type ValidatorRecord struct {
	Key           string
	Balance       fixedpoint.Scaled
	Slashed       bool
	ExitRequested bool
}

var validatorRecordSchema = canonicaljson.Object(map[string]*canonicaljson.Schema{
	"key":            canonicaljson.StringSchema(),
	"balance":        canonicaljson.MagnitudeSchema(),
	"slashed":        canonicaljson.StringSchema(),
	"exit_requested": canonicaljson.StringSchema(),
})

// CanonicalBytes returns r's canonical-JSON leaf encoding.
func (r ValidatorRecord) CanonicalBytes() ([]byte, error) {
	v := canonicaljson.Obj(map[string]canonicaljson.Value{
		"key":            canonicaljson.Str(r.Key),
		"balance":        canonicaljson.Magnitude(r.Balance.Raw()),
		"slashed":        canonicaljson.Str(flagOf(r.Slashed)),
		"exit_requested": canonicaljson.Str(flagOf(r.ExitRequested)),
	})
	b, err := canonicaljson.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSerialization, err.Error())
	}
	return b, nil
}

// ParseValidatorRecord decodes a validator pool leaf blob.
func ParseValidatorRecord(data []byte) (ValidatorRecord, error) {
	v, err := canonicaljson.Parse(data, validatorRecordSchema)
	if err != nil {
		return ValidatorRecord{}, errors.Wrap(ErrInvalidSerialization, err.Error())
	}
	keyField, _ := v.Field("key")
	balField, _ := v.Field("balance")
	slashedField, _ := v.Field("slashed")
	exitField, _ := v.Field("exit_requested")

	bal, err := fixedpoint.FromMagnitudeString(balField.Text())
	if err != nil {
		return ValidatorRecord{}, errors.Wrap(ErrMathOverflow, err.Error())
	}
	slashed, err := parseFlag(slashedField.Text())
	if err != nil {
		return ValidatorRecord{}, err
	}
	exit, err := parseFlag(exitField.Text())
	if err != nil {
		return ValidatorRecord{}, err
	}
	return ValidatorRecord{Key: keyField.Text(), Balance: bal, Slashed: slashed, ExitRequested: exit}, nil
}

// ImpactRecord is the leaf content of the impact pool.
type ImpactRecord struct {
	Key     string
	Payload string
}

var impactRecordSchema = canonicaljson.Object(map[string]*canonicaljson.Schema{
	"key":     canonicaljson.StringSchema(),
	"payload": canonicaljson.StringSchema(),
})

// CanonicalBytes returns r's canonical-JSON leaf encoding.
func (r ImpactRecord) CanonicalBytes() ([]byte, error) {
	v := canonicaljson.Obj(map[string]canonicaljson.Value{
		"key":     canonicaljson.Str(r.Key),
		"payload": canonicaljson.Str(r.Payload),
	})
	b, err := canonicaljson.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSerialization, err.Error())
	}
	return b, nil
}

// ParseImpactRecord decodes an impact pool leaf blob.
func ParseImpactRecord(data []byte) (ImpactRecord, error) {
	v, err := canonicaljson.Parse(data, impactRecordSchema)
	if err != nil {
		return ImpactRecord{}, errors.Wrap(ErrInvalidSerialization, err.Error())
	}
	keyField, _ := v.Field("key")
	payloadField, _ := v.Field("payload")
	return ImpactRecord{Key: keyField.Text(), Payload: payloadField.Text()}, nil
}

// BondRecord is the leaf content of the bond pool.
type BondRecord struct {
	Key          string
	Target       string
	StakedWeight fixedpoint.Scaled
}

var bondRecordSchema = canonicaljson.Object(map[string]*canonicaljson.Schema{
	"key":           canonicaljson.StringSchema(),
	"target":        canonicaljson.StringSchema(),
	"staked_weight": canonicaljson.MagnitudeSchema(),
})

// CanonicalBytes returns r's canonical-JSON leaf encoding.
func (r BondRecord) CanonicalBytes() ([]byte, error) {
	v := canonicaljson.Obj(map[string]canonicaljson.Value{
		"key":           canonicaljson.Str(r.Key),
		"target":        canonicaljson.Str(r.Target),
		"staked_weight": canonicaljson.Magnitude(r.StakedWeight.Raw()),
	})
	b, err := canonicaljson.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSerialization, err.Error())
	}
	return b, nil
}

// ParseBondRecord decodes a bond pool leaf blob.
func ParseBondRecord(data []byte) (BondRecord, error) {
	v, err := canonicaljson.Parse(data, bondRecordSchema)
	if err != nil {
		return BondRecord{}, errors.Wrap(ErrInvalidSerialization, err.Error())
	}
	keyField, _ := v.Field("key")
	targetField, _ := v.Field("target")
	weightField, _ := v.Field("staked_weight")

	weight, err := fixedpoint.FromMagnitudeString(weightField.Text())
	if err != nil {
		return BondRecord{}, errors.Wrap(ErrMathOverflow, err.Error())
	}
	return BondRecord{Key: keyField.Text(), Target: targetField.Text(), StakedWeight: weight}, nil
}

// Package fixedpoint implements the kernel's scaled-integer arithmetic:
// a single opaque value type backed by an unsigned 128-bit magnitude,
// interpreted at a fixed scale, with checked operations and frozen
// truncation. No floating-point type appears anywhere in this package.
package fixedpoint

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/epochkernel/epochkernel/shared/params"
)

// ErrOverflow is returned by every operation in this package that would
// otherwise overflow, underflow, or divide by zero. It is the fixed-point
// layer's sole error value; callers map it to the kernel's MathOverflow
// taxonomy entry.
var ErrOverflow = errors.New("fixedpoint: checked operation overflowed")

var (
	maxUint128 = func() *uint256.Int {
		max := new(uint256.Int).SetAllOne()
		// Clear the high 128 bits, leaving the maximum representable
		// 128-bit magnitude.
		return max.Rsh(max, 128)
	}()

	ceiling = func() *uint256.Int {
		scale := uint256.NewInt(params.Config().FixedPointScale)
		one := uint256.NewInt(1)
		numerator := new(uint256.Int).Add(maxUint128, one) // 2^128
		return new(uint256.Int).Div(numerator, scale)
	}()

	scaleInt = uint256.NewInt(params.Config().FixedPointScale)
)

// Scaled is an unsigned fixed-point magnitude at scale
// params.Config().FixedPointScale. The inner integer is never exposed
// directly; Raw is the one documented accessor, used by the canonical-JSON
// layer to emit a magnitude string.
type Scaled struct {
	mag uint256.Int
}

// Zero is the additive identity.
var Zero = Scaled{}

// FromMagnitudeString constructs a Scaled from a canonical-JSON magnitude
// string (already validated by shared/canonicaljson against
// ^(0|[1-9][0-9]*)$). It fails if the value exceeds the chained
// multiplication ceiling 2^128 / scale.
func FromMagnitudeString(s string) (Scaled, error) {
	mag, err := uint256.FromDecimal(s)
	if err != nil {
		return Scaled{}, errors.Wrap(ErrOverflow, "fixedpoint: magnitude is not a valid decimal integer")
	}
	return fromRaw(mag)
}

// FromUint64 constructs a Scaled from a native scaled magnitude, used
// internally for frozen constants such as the decay factor.
func FromUint64(v uint64) Scaled {
	s, err := fromRaw(uint256.NewInt(v))
	if err != nil {
		// Frozen constants are chosen to always fit; a violation here is
		// a programming error in the kernel itself, not a runtime
		// condition the caller can recover from.
		panic(err)
	}
	return s
}

func fromRaw(mag *uint256.Int) (Scaled, error) {
	if mag.Gt(ceiling) {
		return Scaled{}, errors.Wrapf(ErrOverflow, "fixedpoint: magnitude %s exceeds ceiling %s", mag.Dec(), ceiling.Dec())
	}
	return Scaled{mag: *mag}, nil
}

// Raw returns the decimal-string representation of the underlying scaled
// magnitude. This is the only way to observe the inner integer, and exists
// specifically so the canonical-JSON layer can emit it as a magnitude
// string.
func (s Scaled) Raw() string {
	return s.mag.Dec()
}

// IsZero reports whether the magnitude is exactly zero.
func (s Scaled) IsZero() bool {
	return s.mag.IsZero()
}

// Cmp orders two Scaled values by their raw magnitude.
func (s Scaled) Cmp(other Scaled) int {
	return s.mag.Cmp(&other.mag)
}

// Add computes a checked, scale-preserving addition.
func Add(a, b Scaled) (Scaled, error) {
	sum, overflow := new(uint256.Int).AddOverflow(&a.mag, &b.mag)
	if overflow {
		return Scaled{}, errors.Wrap(ErrOverflow, "fixedpoint: addition overflowed 256-bit intermediate")
	}
	return fromRaw(sum)
}

// Sub computes a checked subtraction; underflow (b > a) is a failed
// transition, never a trap and never silent wraparound.
func Sub(a, b Scaled) (Scaled, error) {
	if b.mag.Gt(&a.mag) {
		return Scaled{}, errors.Wrap(ErrOverflow, "fixedpoint: subtraction underflowed")
	}
	diff := new(uint256.Int).Sub(&a.mag, &b.mag)
	return fromRaw(diff)
}

// SubSaturating computes a - b, saturating at zero instead of failing.
// This is the single opt-in exception to checked subtraction in the
// kernel, reserved for slashing a liquid balance down to (at most) zero.
func SubSaturating(a, b Scaled) Scaled {
	if b.mag.Gt(&a.mag) {
		return Zero
	}
	diff := new(uint256.Int).Sub(&a.mag, &b.mag)
	out, err := fromRaw(diff)
	if err != nil {
		// diff <= a <= ceiling already, so this is unreachable.
		panic(err)
	}
	return out
}

// MulScaled computes (a * b) / scale using a single 128x128->256-bit
// multiply followed by an integer divide, truncating toward zero. This is
// the kernel's only multiplicative primitive: there is no three-operand
// variant, so chaining multiplications requires an intervening MulScaled
// call per pair, each of which re-validates its own result against the
// ceiling before it can be fed into another.
func MulScaled(a, b Scaled) (Scaled, error) {
	product, overflow := new(uint256.Int).MulOverflow(&a.mag, &b.mag)
	if overflow {
		return Scaled{}, errors.Wrap(ErrOverflow, "fixedpoint: multiplication overflowed 256-bit intermediate")
	}
	quotient := new(uint256.Int).Div(product, scaleInt)
	return fromRaw(quotient)
}

// DivScaled computes (a * scale) / b, truncating toward zero. A zero
// divisor is a failed transition, never an arithmetic trap.
func DivScaled(a, b Scaled) (Scaled, error) {
	if b.IsZero() {
		return Scaled{}, errors.Wrap(ErrOverflow, "fixedpoint: division by zero")
	}
	scaledNumerator, overflow := new(uint256.Int).MulOverflow(&a.mag, scaleInt)
	if overflow {
		return Scaled{}, errors.Wrap(ErrOverflow, "fixedpoint: division numerator overflowed 256-bit intermediate")
	}
	quotient := new(uint256.Int).Div(scaledNumerator, &b.mag)
	return fromRaw(quotient)
}

// Ceiling returns the chained-multiplication ceiling, 2^128 / scale: the
// largest magnitude a Scaled can hold.
func Ceiling() Scaled {
	out, err := fromRaw(new(uint256.Int).Set(ceiling))
	if err != nil {
		panic(err)
	}
	return out
}

// DecayFactor returns the frozen scaled constant representing e^-0.0577
// truncated at scale 10^12, as specified.
func DecayFactor() Scaled {
	return FromUint64(params.Config().DecayFactorScaled)
}

package fixedpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromMagnitudeString_RoundTrips(t *testing.T) {
	s, err := FromMagnitudeString("1000000000000")
	require.NoError(t, err)
	require.Equal(t, "1000000000000", s.Raw())
}

func TestFromMagnitudeString_RejectsGarbage(t *testing.T) {
	_, err := FromMagnitudeString("not-a-number")
	require.ErrorIs(t, err, ErrOverflow)
}

func TestAdd_Basic(t *testing.T) {
	a := FromUint64(500_000_000_000)
	b := FromUint64(500_000_000_000)
	sum, err := Add(a, b)
	require.NoError(t, err)
	require.Equal(t, "1000000000000", sum.Raw())
}

func TestSub_UnderflowIsError(t *testing.T) {
	a := FromUint64(1)
	b := FromUint64(2)
	_, err := Sub(a, b)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestSubSaturating_ClampsAtZero(t *testing.T) {
	a := FromUint64(1)
	b := FromUint64(2)
	out := SubSaturating(a, b)
	require.True(t, out.IsZero())
}

func TestSubSaturating_NormalCase(t *testing.T) {
	a := FromUint64(5_000_000_000_000)
	b := FromUint64(2_000_000_000_000)
	out := SubSaturating(a, b)
	require.Equal(t, "3000000000000", out.Raw())
}

// TestMulScaled_TruncatesTowardZero pins the frozen rounding rule: the
// product 1.5 * 1.000000000003 truncates its fractional remainder rather
// than rounding it, per the spec's "truncation toward zero, remainder
// burned" rule.
func TestMulScaled_TruncatesTowardZero(t *testing.T) {
	a := FromUint64(1_500_000_000_000) // 1.5
	b := FromUint64(1_000_000_000_003) // 1.000000000003
	out, err := MulScaled(a, b)
	require.NoError(t, err)
	// (1.5e12 * 1.000000000003e12) / 1e12 = 1500000000004.5 -> truncated to 1500000000004
	require.Equal(t, "1500000000004", out.Raw())
}

func TestMulScaled_ZeroIsAbsorbing(t *testing.T) {
	a := FromUint64(0)
	b := FromUint64(999_999_999_999)
	out, err := MulScaled(a, b)
	require.NoError(t, err)
	require.True(t, out.IsZero())
}

func TestDivScaled_ByZeroIsError(t *testing.T) {
	a := FromUint64(1_000_000_000_000)
	_, err := DivScaled(a, Zero)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestDivScaled_TruncatesTowardZero(t *testing.T) {
	a := FromUint64(1_000_000_000_000) // 1.0
	b := FromUint64(3_000_000_000_000) // 3.0
	out, err := DivScaled(a, b)
	require.NoError(t, err)
	// 1/3 = 0.333333333333... truncated at scale 1e12
	require.Equal(t, "333333333333", out.Raw())
}

func TestChainedMultiplication_RequiresTwoCalls(t *testing.T) {
	a := FromUint64(2_000_000_000_000)
	b := FromUint64(3_000_000_000_000)
	c := FromUint64(4_000_000_000_000)

	ab, err := MulScaled(a, b)
	require.NoError(t, err)
	abc, err := MulScaled(ab, c)
	require.NoError(t, err)
	require.Equal(t, "24000000000000", abc.Raw())
}

func TestCeiling_RejectsOneAboveCeiling(t *testing.T) {
	max := Ceiling()
	// max + 1 must not be constructible via Add.
	_, err := Add(max, FromUint64(1))
	require.ErrorIs(t, err, ErrOverflow)
}

func TestCmp_OrdersByMagnitude(t *testing.T) {
	a := FromUint64(1)
	b := FromUint64(2)
	require.Equal(t, -1, a.Cmp(b))
	require.Equal(t, 1, b.Cmp(a))
	require.Equal(t, 0, a.Cmp(a))
}

func TestDecayFactor_IsFrozenConstant(t *testing.T) {
	require.Equal(t, "943932824245", DecayFactor().Raw())
}

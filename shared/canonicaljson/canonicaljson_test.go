package canonicaljson

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshal_KeyOrderingIsCanonicalRegardlessOfInsertionOrder(t *testing.T) {
	a := Obj(map[string]Value{"b": Str("2"), "a": Str("1")})
	b := Obj(map[string]Value{"a": Str("1"), "b": Str("2")})

	gotA, err := Marshal(a)
	require.NoError(t, err)
	gotB, err := Marshal(b)
	require.NoError(t, err)

	require.Equal(t, `{"a":"1","b":"2"}`, string(gotA))
	require.Equal(t, gotA, gotB)
}

func TestMarshal_NoWhitespace(t *testing.T) {
	v := Obj(map[string]Value{
		"name": Str("example"),
		"tags": Arr([]Value{Str("x"), Str("y")}),
		"amt":  Magnitude("42"),
	})
	got, err := Marshal(v)
	require.NoError(t, err)
	require.Equal(t, `{"amt":"42","name":"example","tags":["x","y"]}`, string(got))
}

func TestMarshal_RejectsBadKeyCharset(t *testing.T) {
	_, err := Marshal(Obj(map[string]Value{"A": Str("1")}))
	require.ErrorIs(t, err, ErrInvalidSerialization)
}

func TestMarshal_RejectsMalformedMagnitude(t *testing.T) {
	cases := []string{"01", "-1", "1.5", "1e9", "", " 1", "1 "}
	for _, c := range cases {
		_, err := Marshal(Obj(map[string]Value{"amt": Magnitude(c)}))
		require.ErrorIsf(t, err, ErrInvalidSerialization, "magnitude %q should be rejected", c)
	}
}

var flatObjSchema = Object(map[string]*Schema{
	"a": StringSchema(),
	"b": StringSchema(),
})

func TestParse_RoundTrip(t *testing.T) {
	in := []byte(`{"a":"1","b":"2"}`)
	v, err := Parse(in, flatObjSchema)
	require.NoError(t, err)

	out, err := Marshal(v)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestParse_RejectsDuplicateKey(t *testing.T) {
	_, err := Parse([]byte(`{"a":"1","a":"2"}`), flatObjSchema)
	require.ErrorIs(t, err, ErrInvalidSerialization)
}

func TestParse_RejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte(`{"a":"1","c":"2"}`), flatObjSchema)
	require.ErrorIs(t, err, ErrInvalidSerialization)
}

func TestParse_RejectsBadKeyCharset(t *testing.T) {
	_, err := Parse([]byte(`{"A":"1"}`), Object(map[string]*Schema{"A": StringSchema()}))
	require.ErrorIs(t, err, ErrInvalidSerialization)
}

func TestParse_RejectsOutOfOrderKeys(t *testing.T) {
	_, err := Parse([]byte(`{"b":"2","a":"1"}`), flatObjSchema)
	require.ErrorIs(t, err, ErrInvalidSerialization)
}

func TestParse_RejectsWhitespace(t *testing.T) {
	_, err := Parse([]byte(`{"a": "1","b":"2"}`), flatObjSchema)
	require.ErrorIs(t, err, ErrInvalidSerialization)
}

func TestParse_RejectsTrailingBytes(t *testing.T) {
	_, err := Parse([]byte(`{"a":"1","b":"2"}garbage`), flatObjSchema)
	require.ErrorIs(t, err, ErrInvalidSerialization)
}

func TestParse_MagnitudeSchema(t *testing.T) {
	schema := Object(map[string]*Schema{"amt": MagnitudeSchema()})
	v, err := Parse([]byte(`{"amt":"007"}`), schema)
	require.Error(t, err)
	require.Zero(t, v.Kind())

	v, err = Parse([]byte(`{"amt":"7"}`), schema)
	require.NoError(t, err)
	amt, ok := v.Field("amt")
	require.True(t, ok)
	require.Equal(t, "7", amt.Text())
}

func TestParse_DepthBound(t *testing.T) {
	// Build a nested object schema/payload 41 levels deep and confirm it
	// is rejected at the shared Merkle-depth bound.
	schema := &Schema{Kind: KindString}
	payload := `"leaf"`
	for i := 0; i < 41; i++ {
		schema = Object(map[string]*Schema{"n": schema})
		payload = `{"n":` + payload + `}`
	}

	_, err := Parse([]byte(payload), schema)
	require.ErrorIs(t, err, ErrInvalidSerialization)
}

func TestMarshal_ArrayPreservesElementOrder(t *testing.T) {
	v := Arr([]Value{Str("z"), Str("a"), Str("m")})
	got, err := Marshal(v)
	require.NoError(t, err)
	require.Equal(t, `["z","a","m"]`, string(got))
}

// Package canonicaljson implements the kernel's strict, byte-unique
// encoding for a restricted JSON value space: objects, ordered arrays,
// strings, and magnitude-strings. It is not a general JSON library — it
// has no concept of numbers, floats, booleans, or null, and every object
// it produces or accepts emits its keys in ascending byte-lexicographic
// order with no whitespace anywhere outside string contents.
//
// Grounded in the teacher's hand-rolled SSZ tree encoder idiom (see
// shared/ssz in the wider corpus): a small closed value algebra walked by
// a single recursive writer, rather than reflection over Go structs.
package canonicaljson

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/epochkernel/epochkernel/shared/params"
)

// Kind identifies which of the four admissible shapes a Value holds.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindString
	KindMagnitude
)

// ErrInvalidSerialization is the sole error this package returns. Every
// rejection reason — bad key charset, duplicate key, unknown field,
// malformed magnitude, out-of-order keys, depth overflow — wraps it so
// callers can test with errors.Is while still seeing the precise cause
// via %+v.
var ErrInvalidSerialization = errors.New("canonicaljson: value is not admissible under the canonical grammar")

var (
	keyPattern       = regexp.MustCompile(`^[a-z0-9_]+$`)
	magnitudePattern = regexp.MustCompile(`^(0|[1-9][0-9]*)$`)
)

// Value is an immutable admissible JSON value: one of an object, an
// ordered array, a string, or a magnitude-string. The zero Value is not
// meaningful; construct one with Obj, Arr, Str, or Magnitude.
type Value struct {
	kind Kind
	obj  map[string]Value
	arr  []Value
	str  string
}

// Obj constructs an object value from a field map. Field order is not
// significant — Marshal always emits keys in ascending byte-lexicographic
// order regardless of map iteration order or insertion history, which is
// what gives two logically equivalent inputs identical output bytes.
func Obj(fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{kind: KindObject, obj: cp}
}

// Arr constructs an array value. Unlike object keys, array element order
// is significant and preserved exactly as given.
func Arr(elems []Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, arr: cp}
}

// Str constructs a plain string value. s is not validated against any
// grammar beyond what Marshal's output encoding requires; unlike
// Magnitude, arbitrary non-numeric text is admissible here.
func Str(s string) Value {
	return Value{kind: KindString, str: s}
}

// Magnitude constructs a magnitude-string value: a base-10, non-negative
// integer with no leading zeros, carried as a string because the
// canonical grammar forbids JSON number literals entirely. Marshal
// rejects a Magnitude whose content does not match ^(0|[1-9][0-9]*)$.
func Magnitude(s string) Value {
	return Value{kind: KindMagnitude, str: s}
}

// Kind reports which of the four admissible shapes v holds.
func (v Value) Kind() Kind {
	return v.kind
}

// Fields returns a copy of an object Value's field map.
func (v Value) Fields() map[string]Value {
	cp := make(map[string]Value, len(v.obj))
	for k, val := range v.obj {
		cp[k] = val
	}
	return cp
}

// Field returns the value stored under key in an object Value, and
// whether it was present. If v is not an object, Field reports the zero
// Value and false; callers that parsed v through a Schema already know
// its shape.
func (v Value) Field(key string) (Value, bool) {
	out, ok := v.obj[key]
	return out, ok
}

// Elems returns the ordered elements of an array Value.
func (v Value) Elems() []Value {
	return v.arr
}

// Len returns the number of elements in an array Value.
func (v Value) Len() int {
	return len(v.arr)
}

// Text returns the raw string content of a String or Magnitude Value.
func (v Value) Text() string {
	return v.str
}

func isValidKey(k string) bool {
	return keyPattern.MatchString(k)
}

func isValidMagnitude(s string) bool {
	return magnitudePattern.MatchString(s)
}

func maxDepth() int {
	return params.Config().MerkleMaxDepth
}

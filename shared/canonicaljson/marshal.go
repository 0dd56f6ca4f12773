package canonicaljson

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Marshal produces the unique canonical byte encoding of v. It enforces
// every rule of the grammar on the way out — key charset, ascending key
// order, magnitude grammar, and the depth bound shared with the Merkle
// layer — so a malformed Value built by a careless caller can never reach
// the wire instead of failing loudly.
func Marshal(v Value) ([]byte, error) {
	var buf strings.Builder
	if err := marshalInto(&buf, v, 0); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func marshalInto(buf *strings.Builder, v Value, depth int) error {
	if depth > maxDepth() {
		return errors.Wrap(ErrInvalidSerialization, "canonicaljson: value exceeds maximum nesting depth")
	}

	switch v.kind {
	case KindObject:
		return marshalObject(buf, v.obj, depth)
	case KindArray:
		return marshalArray(buf, v.arr, depth)
	case KindString:
		return marshalString(buf, v.str)
	case KindMagnitude:
		return marshalMagnitude(buf, v.str)
	default:
		return errors.Wrap(ErrInvalidSerialization, "canonicaljson: value has no recognized kind")
	}
}

func marshalObject(buf *strings.Builder, fields map[string]Value, depth int) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !isValidKey(k) {
			return errors.Wrapf(ErrInvalidSerialization, "canonicaljson: object key %q does not match ^[a-z0-9_]+$", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := marshalInto(buf, fields[k], depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func marshalArray(buf *strings.Builder, elems []Value, depth int) error {
	buf.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalInto(buf, e, depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalMagnitude(buf *strings.Builder, s string) error {
	if !isValidMagnitude(s) {
		return errors.Wrapf(ErrInvalidSerialization, "canonicaljson: magnitude %q does not match ^(0|[1-9][0-9]*)$", s)
	}
	return marshalString(buf, s)
}

// marshalString writes s as a quoted JSON string using the minimal escape
// set (quote, backslash, and the C0 control range). No Unicode
// normalization of any kind is applied: raw UTF-8 code units pass through
// unchanged, which is what makes byte-lexicographic key ordering
// locale-independent.
func marshalString(buf *strings.Builder, s string) error {
	buf.WriteByte('"')
	for _, b := range []byte(s) {
		switch b {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if b < 0x20 {
				const hex = "0123456789abcdef"
				buf.WriteString(`\u00`)
				buf.WriteByte(hex[b>>4])
				buf.WriteByte(hex[b&0xf])
			} else {
				buf.WriteByte(b)
			}
		}
	}
	buf.WriteByte('"')
	return nil
}

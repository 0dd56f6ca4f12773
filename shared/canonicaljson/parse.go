package canonicaljson

import (
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Parse decodes data against schema, hard-rejecting anything the
// canonical grammar or the schema itself does not admit: whitespace
// outside string contents, non-ASCII or disallowed-charset keys,
// duplicate keys, out-of-order keys, fields unknown to schema,
// malformed magnitude strings, and nesting beyond the shared Merkle-depth
// bound. A successful Parse, re-encoded with Marshal, always reproduces
// the original input bytes exactly.
func Parse(data []byte, schema *Schema) (Value, error) {
	p := &parser{data: data}
	v, err := p.parseValue(schema, 0)
	if err != nil {
		return Value{}, err
	}
	if p.pos != len(p.data) {
		return Value{}, errors.Wrap(ErrInvalidSerialization, "canonicaljson: trailing bytes after top-level value")
	}
	return v, nil
}

type parser struct {
	data []byte
	pos  int
}

func (p *parser) parseValue(schema *Schema, depth int) (Value, error) {
	if depth > maxDepth() {
		return Value{}, errors.Wrap(ErrInvalidSerialization, "canonicaljson: input exceeds maximum nesting depth")
	}
	if p.pos >= len(p.data) {
		return Value{}, errors.Wrap(ErrInvalidSerialization, "canonicaljson: unexpected end of input")
	}

	switch schema.Kind {
	case KindObject:
		return p.parseObject(schema, depth)
	case KindArray:
		return p.parseArray(schema, depth)
	case KindString:
		s, err := p.parseQuotedString()
		if err != nil {
			return Value{}, err
		}
		return Str(s), nil
	case KindMagnitude:
		s, err := p.parseQuotedString()
		if err != nil {
			return Value{}, err
		}
		if !isValidMagnitude(s) {
			return Value{}, errors.Wrapf(ErrInvalidSerialization, "canonicaljson: magnitude %q does not match ^(0|[1-9][0-9]*)$", s)
		}
		return Magnitude(s), nil
	default:
		return Value{}, errors.Wrap(ErrInvalidSerialization, "canonicaljson: schema has no recognized kind")
	}
}

func (p *parser) parseObject(schema *Schema, depth int) (Value, error) {
	if err := p.expect('{'); err != nil {
		return Value{}, err
	}

	fields := make(map[string]Value)
	lastKey := ""
	first := true

	for {
		if p.peek() == '}' {
			p.pos++
			break
		}
		if !first {
			if err := p.expect(','); err != nil {
				return Value{}, err
			}
		}
		first = false

		key, err := p.parseQuotedString()
		if err != nil {
			return Value{}, err
		}
		if !isValidKey(key) {
			return Value{}, errors.Wrapf(ErrInvalidSerialization, "canonicaljson: object key %q does not match ^[a-z0-9_]+$", key)
		}
		if _, dup := fields[key]; dup {
			return Value{}, errors.Wrapf(ErrInvalidSerialization, "canonicaljson: duplicate key %q", key)
		}
		if len(fields) > 0 && key <= lastKey {
			return Value{}, errors.Wrapf(ErrInvalidSerialization, "canonicaljson: key %q is out of ascending order", key)
		}
		lastKey = key

		fieldSchema, known := schema.Fields[key]
		if !known {
			return Value{}, errors.Wrapf(ErrInvalidSerialization, "canonicaljson: unknown field %q", key)
		}

		if err := p.expect(':'); err != nil {
			return Value{}, err
		}

		val, err := p.parseValue(fieldSchema, depth+1)
		if err != nil {
			return Value{}, err
		}
		fields[key] = val
	}

	return Obj(fields), nil
}

func (p *parser) parseArray(schema *Schema, depth int) (Value, error) {
	if err := p.expect('['); err != nil {
		return Value{}, err
	}

	var elems []Value
	first := true
	for {
		if p.peek() == ']' {
			p.pos++
			break
		}
		if !first {
			if err := p.expect(','); err != nil {
				return Value{}, err
			}
		}
		first = false

		val, err := p.parseValue(schema.Elem, depth+1)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, val)
	}

	return Arr(elems), nil
}

func (p *parser) peek() byte {
	if p.pos >= len(p.data) {
		return 0
	}
	return p.data[p.pos]
}

func (p *parser) expect(b byte) error {
	if p.pos >= len(p.data) || p.data[p.pos] != b {
		return errors.Wrapf(ErrInvalidSerialization, "canonicaljson: expected %q at offset %d", b, p.pos)
	}
	p.pos++
	return nil
}

// parseQuotedString reads a JSON-quoted string starting at the current
// position, recognizing exactly the escapes marshalString emits. No
// whitespace is permitted before the opening quote.
func (p *parser) parseQuotedString() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	var out []byte
	for {
		if p.pos >= len(p.data) {
			return "", errors.Wrap(ErrInvalidSerialization, "canonicaljson: unterminated string")
		}
		b := p.data[p.pos]
		if b == '"' {
			p.pos++
			return string(out), nil
		}
		if b < 0x20 {
			return "", errors.Wrap(ErrInvalidSerialization, "canonicaljson: raw control byte in string")
		}
		if b == '\\' {
			p.pos++
			if p.pos >= len(p.data) {
				return "", errors.Wrap(ErrInvalidSerialization, "canonicaljson: unterminated escape")
			}
			esc := p.data[p.pos]
			switch esc {
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'u':
				if p.pos+4 >= len(p.data) {
					return "", errors.Wrap(ErrInvalidSerialization, "canonicaljson: truncated \\u escape")
				}
				r, err := decodeHex4(p.data[p.pos+1 : p.pos+5])
				if err != nil {
					return "", err
				}
				// marshalString emits \u00xx, lowercase hex, only for C0
				// control bytes other than \n, \r and \t.
				if r >= 0x20 || r == '\n' || r == '\r' || r == '\t' {
					return "", errors.Wrap(ErrInvalidSerialization, "canonicaljson: non-canonical \\u escape")
				}
				for _, c := range p.data[p.pos+1 : p.pos+5] {
					if c >= 'A' && c <= 'F' {
						return "", errors.Wrap(ErrInvalidSerialization, "canonicaljson: non-canonical \\u escape")
					}
				}
				var buf [utf8.UTFMax]byte
				n := utf8.EncodeRune(buf[:], rune(r))
				out = append(out, buf[:n]...)
				p.pos += 4
			default:
				return "", errors.Wrapf(ErrInvalidSerialization, "canonicaljson: unsupported escape \\%c", esc)
			}
			p.pos++
			continue
		}
		out = append(out, b)
		p.pos++
	}
}

func decodeHex4(b []byte) (uint16, error) {
	var v uint16
	for _, c := range b {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint16(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint16(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint16(c-'A') + 10
		default:
			return 0, errors.Wrap(ErrInvalidSerialization, "canonicaljson: invalid hex digit in \\u escape")
		}
	}
	return v, nil
}

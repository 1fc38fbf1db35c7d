// Package parse turns raw JSON manifest text into ir trees. The parser keeps
// two things the standard decoder throws away: object key order, and the
// source line of every value, which the formatter needs to recover blank-line
// evidence from the original text.
package parse

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/nazahex/rigra/ir"
)

// Parse parses a single JSON document. Trailing whitespace is allowed;
// trailing content is not.
func Parse(src []byte) (*ir.Node, error) {
	p := &parser{src: src, line: 1}
	p.skipSpace()
	node, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errf("unexpected trailing content")
	}
	return node, nil
}

type parser struct {
	src  []byte
	pos  int
	line int
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, p.line, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\n':
			p.line++
			p.pos++
		case ' ', '\t', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) value() (*ir.Node, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.errf("unexpected end of input")
	}
	switch {
	case c == '{':
		return p.object()
	case c == '[':
		return p.array()
	case c == '"':
		line := p.line
		s, err := p.string()
		if err != nil {
			return nil, err
		}
		n := ir.FromString(s)
		n.Line = line
		return n, nil
	case c == 't' || c == 'f':
		return p.boolean()
	case c == 'n':
		return p.null()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return nil, p.errf("unexpected character %q", c)
	}
}

func (p *parser) object() (*ir.Node, error) {
	obj := ir.Object()
	obj.Line = p.line
	p.pos++ // '{'
	p.skipSpace()
	if c, ok := p.peek(); ok && c == '}' {
		p.pos++
		return obj, nil
	}
	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok || c != '"' {
			return nil, p.errf("expected object key")
		}
		keyLine := p.line
		key, err := p.string()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if c, ok := p.peek(); !ok || c != ':' {
			return nil, p.errf("expected ':' after key %q", key)
		}
		p.pos++
		p.skipSpace()
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		field := ir.FromString(key)
		field.Line = keyLine
		obj.Fields = append(obj.Fields, field)
		obj.Values = append(obj.Values, val)
		p.skipSpace()
		c, ok = p.peek()
		switch {
		case ok && c == ',':
			p.pos++
		case ok && c == '}':
			p.pos++
			return obj, nil
		default:
			return nil, p.errf("expected ',' or '}' in object")
		}
	}
}

func (p *parser) array() (*ir.Node, error) {
	arr := ir.FromSlice(nil)
	arr.Line = p.line
	p.pos++ // '['
	p.skipSpace()
	if c, ok := p.peek(); ok && c == ']' {
		p.pos++
		return arr, nil
	}
	for {
		p.skipSpace()
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		arr.Values = append(arr.Values, val)
		p.skipSpace()
		c, ok := p.peek()
		switch {
		case ok && c == ',':
			p.pos++
		case ok && c == ']':
			p.pos++
			return arr, nil
		default:
			return nil, p.errf("expected ',' or ']' in array")
		}
	}
}

func (p *parser) literal(lit string) bool {
	if strings.HasPrefix(string(p.src[p.pos:]), lit) {
		p.pos += len(lit)
		return true
	}
	return false
}

func (p *parser) boolean() (*ir.Node, error) {
	line := p.line
	if p.literal("true") {
		n := ir.FromBool(true)
		n.Line = line
		return n, nil
	}
	if p.literal("false") {
		n := ir.FromBool(false)
		n.Line = line
		return n, nil
	}
	return nil, p.errf("invalid literal")
}

func (p *parser) null() (*ir.Node, error) {
	line := p.line
	if p.literal("null") {
		n := ir.Null()
		n.Line = line
		return n, nil
	}
	return nil, p.errf("invalid literal")
}

// number scans a JSON number and keeps the raw literal so encoding reproduces
// the original spelling byte for byte.
func (p *parser) number() (*ir.Node, error) {
	start := p.pos
	line := p.line
	if c, ok := p.peek(); ok && c == '-' {
		p.pos++
	}
	digits := 0
	intStart := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
		digits++
	}
	if digits == 0 {
		return nil, p.errf("invalid number")
	}
	if digits > 1 && p.src[intStart] == '0' {
		return nil, p.errf("invalid number: leading zero")
	}
	isFloat := false
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		isFloat = true
		p.pos++
		frac := 0
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
			frac++
		}
		if frac == 0 {
			return nil, p.errf("invalid number: missing fraction digits")
		}
	}
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		isFloat = true
		p.pos++
		if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		exp := 0
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
			exp++
		}
		if exp == 0 {
			return nil, p.errf("invalid number: missing exponent digits")
		}
	}
	raw := string(p.src[start:p.pos])
	n := &ir.Node{Type: ir.NumberType, Number: raw, Line: line}
	if !isFloat {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			n.Int64 = &i
			return n, nil
		}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		n.Float64 = &f
	}
	return n, nil
}

func (p *parser) string() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errf("unterminated string")
		}
		c := p.src[p.pos]
		switch {
		case c == '"':
			p.pos++
			return b.String(), nil
		case c == '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errf("unterminated escape")
			}
			esc := p.src[p.pos]
			p.pos++
			switch esc {
			case '"', '\\', '/':
				b.WriteByte(esc)
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				r, err := p.unicodeEscape()
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
			default:
				return "", p.errf("invalid escape %q", esc)
			}
		case c < 0x20:
			return "", p.errf("control character in string")
		default:
			r, sz := utf8.DecodeRune(p.src[p.pos:])
			if r == utf8.RuneError && sz == 1 {
				return "", p.errf("invalid UTF-8 in string")
			}
			b.WriteRune(r)
			p.pos += sz
		}
	}
}

func (p *parser) unicodeEscape() (rune, error) {
	hi, err := p.hex4()
	if err != nil {
		return 0, err
	}
	if utf16.IsSurrogate(rune(hi)) {
		if p.pos+1 < len(p.src) && p.src[p.pos] == '\\' && p.src[p.pos+1] == 'u' {
			p.pos += 2
			lo, err := p.hex4()
			if err != nil {
				return 0, err
			}
			if r := utf16.DecodeRune(rune(hi), rune(lo)); r != utf8.RuneError {
				return r, nil
			}
		}
		return utf8.RuneError, nil
	}
	return rune(hi), nil
}

func (p *parser) hex4() (uint32, error) {
	if p.pos+4 > len(p.src) {
		return 0, p.errf("truncated unicode escape")
	}
	v, err := strconv.ParseUint(string(p.src[p.pos:p.pos+4]), 16, 32)
	if err != nil {
		return 0, p.errf("invalid unicode escape")
	}
	p.pos += 4
	return uint32(v), nil
}

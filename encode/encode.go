// Package encode renders ir trees using the fixed pretty-printing convention
// shared by the formatter and the merge engine: two-space indentation, one
// key per line, and a trailing newline. A blank-line hook lets the formatter
// inject its policy decisions without the encoder knowing about policies.
package encode

import (
	"fmt"
	"io"
	"strings"

	"github.com/nazahex/rigra/ir"
)

type encState struct {
	indent int
	blank  func(field *ir.Node) int
}

type EncodeOption func(*encState)

func Indent(n int) EncodeOption {
	return func(es *encState) { es.indent = n }
}

// BlankBefore installs a hook consulted for every object field; the returned
// count of blank lines is emitted immediately before that field's line. The
// hook receives the field's key node, so callers can key decisions off node
// identity.
func BlankBefore(fn func(field *ir.Node) int) EncodeOption {
	return func(es *encState) { es.blank = fn }
}

func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := &encState{indent: 2}
	for _, opt := range opts {
		opt(es)
	}
	var b strings.Builder
	if err := encode(node, &b, es, 0); err != nil {
		return err
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// String renders a node to text, panicking only on unencodable input, which
// cannot occur for trees produced by parse.
func String(node *ir.Node, opts ...EncodeOption) string {
	var b strings.Builder
	if err := Encode(node, &b, opts...); err != nil {
		panic(fmt.Sprintf("encode: %v", err))
	}
	return b.String()
}

func encode(node *ir.Node, b *strings.Builder, es *encState, depth int) error {
	if node == nil {
		b.WriteString("null")
		return nil
	}
	switch node.Type {
	case ir.NullType:
		b.WriteString("null")
	case ir.BoolType:
		if node.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case ir.NumberType:
		if node.Number == "" {
			return fmt.Errorf("number node with empty literal")
		}
		b.WriteString(node.Number)
	case ir.StringType:
		b.WriteString(Quote(node.String))
	case ir.ArrayType:
		return encodeArray(node, b, es, depth)
	case ir.ObjectType:
		return encodeObject(node, b, es, depth)
	default:
		return fmt.Errorf("cannot encode type %s", node.Type)
	}
	return nil
}

func encodeArray(node *ir.Node, b *strings.Builder, es *encState, depth int) error {
	if len(node.Values) == 0 {
		b.WriteString("[]")
		return nil
	}
	b.WriteByte('[')
	inner := indentString(es, depth+1)
	for i, v := range node.Values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
		b.WriteString(inner)
		if err := encode(v, b, es, depth+1); err != nil {
			return err
		}
	}
	b.WriteByte('\n')
	b.WriteString(indentString(es, depth))
	b.WriteByte(']')
	return nil
}

func encodeObject(node *ir.Node, b *strings.Builder, es *encState, depth int) error {
	if len(node.Fields) == 0 {
		b.WriteString("{}")
		return nil
	}
	b.WriteByte('{')
	inner := indentString(es, depth+1)
	for i, f := range node.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
		if es.blank != nil {
			for n := es.blank(f); n > 0; n-- {
				b.WriteByte('\n')
			}
		}
		b.WriteString(inner)
		b.WriteString(Quote(f.String))
		b.WriteString(": ")
		if err := encode(node.Values[i], b, es, depth+1); err != nil {
			return err
		}
	}
	b.WriteByte('\n')
	b.WriteString(indentString(es, depth))
	b.WriteByte('}')
	return nil
}

func indentString(es *encState, depth int) string {
	return strings.Repeat(" ", es.indent*depth)
}

// Quote renders s as a JSON string literal.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

package encode

import (
	"strings"

	"github.com/nazahex/rigra/ir"
)

// Compact renders a node as single-line JSON, used for diagnostic messages
// and value fingerprints where layout does not matter.
func Compact(node *ir.Node) string {
	var b strings.Builder
	compact(node, &b)
	return b.String()
}

func compact(node *ir.Node, b *strings.Builder) {
	if node == nil {
		b.WriteString("null")
		return
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
		b.WriteString(node.Number)
	case ir.StringType:
		b.WriteString(Quote(node.String))
	case ir.ArrayType:
		b.WriteByte('[')
		for i, v := range node.Values {
			if i > 0 {
				b.WriteByte(',')
			}
			compact(v, b)
		}
		b.WriteByte(']')
	case ir.ObjectType:
		b.WriteByte('{')
		for i, f := range node.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Quote(f.String))
			b.WriteByte(':')
			compact(node.Values[i], b)
		}
		b.WriteByte('}')
	}
}

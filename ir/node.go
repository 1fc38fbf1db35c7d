// Package ir defines the value model shared by the check, format, and merge
// engines. A Node is a tagged union over the six JSON kinds; objects keep
// their fields in parallel Fields/Values slices so insertion order survives
// parsing, which the formatter depends on.
package ir

import (
	"math"
	"sort"
	"strconv"
)

type Node struct {
	Type Type

	// Fields holds the keys of an ObjectType node, each a StringType node.
	// Values holds object values (aligned with Fields) or array elements.
	Fields []*Node
	Values []*Node

	String string
	Bool   bool

	// Number is the raw literal as spelled in the source, kept so
	// re-encoding never changes a value's spelling. Int64/Float64 carry
	// the decoded value when it fits.
	Number  string
	Int64   *int64
	Float64 *float64

	// Line is the 1-based source line of the value (0 if synthesized).
	Line int
}

func Null() *Node {
	return &Node{Type: NullType}
}

func FromString(v string) *Node {
	return &Node{Type: StringType, String: v}
}

func FromBool(v bool) *Node {
	return &Node{Type: BoolType, Bool: v}
}

func FromInt(v int64) *Node {
	return &Node{Type: NumberType, Number: strconv.FormatInt(v, 10), Int64: &v}
}

func FromFloat(v float64) *Node {
	return &Node{Type: NumberType, Number: strconv.FormatFloat(v, 'g', -1, 64), Float64: &v}
}

func FromSlice(vs []*Node) *Node {
	return &Node{Type: ArrayType, Values: vs}
}

func Object() *Node {
	return &Node{Type: ObjectType}
}

// FromAny converts plain Go values (as produced by config decoders) into
// nodes. Map keys are sorted for determinism; ordered construction should go
// through Object().Put instead.
func FromAny(v any) *Node {
	switch x := v.(type) {
	case nil:
		return Null()
	case bool:
		return FromBool(x)
	case string:
		return FromString(x)
	case int:
		return FromInt(int64(x))
	case int64:
		return FromInt(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return FromInt(int64(x))
		}
		return FromFloat(x)
	case []any:
		vs := make([]*Node, len(x))
		for i := range x {
			vs[i] = FromAny(x[i])
		}
		return FromSlice(vs)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := Object()
		for _, k := range keys {
			obj.Put(k, FromAny(x[k]))
		}
		return obj
	default:
		return Null()
	}
}

// Get returns the value for key in an object node.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Type != ObjectType {
		return nil, false
	}
	for i, f := range n.Fields {
		if f.String == key {
			return n.Values[i], true
		}
	}
	return nil, false
}

// Put sets key to val, replacing in place when the key exists and appending
// otherwise, so insertion order is preserved.
func (n *Node) Put(key string, val *Node) {
	for i, f := range n.Fields {
		if f.String == key {
			n.Values[i] = val
			return
		}
	}
	n.Fields = append(n.Fields, FromString(key))
	n.Values = append(n.Values, val)
}

// Delete removes key from an object node; it is a no-op when absent.
func (n *Node) Delete(key string) {
	for i, f := range n.Fields {
		if f.String == key {
			n.Fields = append(n.Fields[:i], n.Fields[i+1:]...)
			n.Values = append(n.Values[:i], n.Values[i+1:]...)
			return
		}
	}
}

// Keys returns the object's field names in document order.
func (n *Node) Keys() []string {
	if n == nil || n.Type != ObjectType {
		return nil
	}
	keys := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		keys[i] = f.String
	}
	return keys
}

func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	dst := &Node{
		Type:   n.Type,
		String: n.String,
		Bool:   n.Bool,
		Number: n.Number,
		Line:   n.Line,
	}
	if n.Int64 != nil {
		v := *n.Int64
		dst.Int64 = &v
	}
	if n.Float64 != nil {
		v := *n.Float64
		dst.Float64 = &v
	}
	if n.Fields != nil {
		dst.Fields = make([]*Node, len(n.Fields))
		for i, f := range n.Fields {
			dst.Fields[i] = f.Clone()
		}
	}
	if n.Values != nil {
		dst.Values = make([]*Node, len(n.Values))
		for i, v := range n.Values {
			dst.Values[i] = v.Clone()
		}
	}
	return dst
}

// Kind reports the runtime kind name used by type checks: one of "null",
// "boolean", "number", "integer", "string", "array", "object". A number is
// an integer when its fractional part is zero.
func (n *Node) Kind() string {
	switch n.Type {
	case NullType:
		return "null"
	case BoolType:
		return "boolean"
	case StringType:
		return "string"
	case ArrayType:
		return "array"
	case ObjectType:
		return "object"
	case NumberType:
		if n.IsInteger() {
			return "integer"
		}
		return "number"
	}
	return "unknown"
}

func (n *Node) IsInteger() bool {
	if n.Type != NumberType {
		return false
	}
	if n.Int64 != nil {
		return true
	}
	if n.Float64 != nil {
		return *n.Float64 == math.Trunc(*n.Float64)
	}
	return false
}

// Package jsonpath implements the dotted-path addressing shared by the check
// and merge engines. Paths are dot-separated object keys with an optional
// leading "$"; there are no array indices and no wildcards. The empty path
// addresses the whole document.
package jsonpath

import (
	"strings"

	"github.com/nazahex/rigra/ir"
)

// Segments splits a path into its key segments, dropping the optional "$"
// prefix and empty segments.
func Segments(path string) []string {
	p := strings.TrimSpace(path)
	p = strings.TrimPrefix(p, "$")
	p = strings.TrimPrefix(p, ".")
	if p == "" {
		return nil
	}
	var segs []string
	for _, s := range strings.Split(p, ".") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// Normalize renders a path in the canonical "$.a.b" form used in diagnostics.
// The empty path normalizes to "$".
func Normalize(path string) string {
	segs := Segments(path)
	if len(segs) == 0 {
		return "$"
	}
	return "$." + strings.Join(segs, ".")
}

// Get walks object keys segment by segment. The second result is false when
// any segment is missing or an intermediate value is not an object; absence
// is a normal outcome, not an error.
func Get(root *ir.Node, path string) (*ir.Node, bool) {
	cur := root
	for _, seg := range Segments(path) {
		if cur == nil || cur.Type != ir.ObjectType {
			return nil, false
		}
		next, ok := cur.Get(seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// Set writes val at path, creating missing intermediate objects. When an
// intermediate exists but is not an object the whole operation is a silent
// no-op, preserving the existing structure. A nil val deletes the final
// segment's key from its parent if present.
func Set(root *ir.Node, path string, val *ir.Node) {
	segs := Segments(path)
	if len(segs) == 0 {
		if val == nil {
			*root = *ir.Null()
			return
		}
		*root = *val
		return
	}
	last := segs[len(segs)-1]
	cur := root
	for _, seg := range segs[:len(segs)-1] {
		if cur.Type != ir.ObjectType {
			return
		}
		next, ok := cur.Get(seg)
		if !ok {
			next = ir.Object()
			cur.Put(seg, next)
		}
		cur = next
	}
	if cur.Type != ir.ObjectType {
		return
	}
	if val == nil {
		cur.Delete(last)
		return
	}
	cur.Put(last, val)
}

// Delete removes the value at path if present.
func Delete(root *ir.Node, path string) {
	Set(root, path, nil)
}

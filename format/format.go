// Package format renders a parsed document back to canonical text: two-space
// indent, one key per line, byte-stable value spelling, with key order and
// blank lines governed by the policy. Formatting the output again always
// yields the same bytes.
package format

import (
	"bytes"
	"sort"

	"github.com/nazahex/rigra/encode"
	"github.com/nazahex/rigra/ir"
	"github.com/nazahex/rigra/policy"
)

const (
	blankKeep = "keep"
	blankNone = "none"
)

// Options carries the formatting policy for one document. Overrides come
// from client config or flags and win over the policy's own linebreak
// section. Strict enables the blank-line rules; when false the formatter
// only reorders keys and reproduces the blank lines the source already had.
type Options struct {
	Order     *policy.Order
	Linebreak *policy.Linebreak
	Overrides *policy.Linebreak
	Strict    bool
}

// Format renders root under opts and reports whether the result differs
// from raw. root is reordered in place.
func Format(raw []byte, root *ir.Node, opts Options) (string, bool, error) {
	ev := blankEvidence(raw, root)
	lb := effectiveLinebreak(opts.Linebreak, opts.Overrides)

	blanks := make(map[*ir.Node]int)
	if root.Type == ir.ObjectType {
		ranks := reorder(root, topGroups(opts.Order))
		if opts.Order != nil {
			for name, groups := range opts.Order.Sub {
				if v, ok := root.Get(name); ok && v.Type == ir.ObjectType {
					reorder(v, groups)
				}
			}
		}
		if opts.Strict {
			decideStrict(root, ranks, ev, lb, blanks)
		} else {
			decideFromEvidence(root, ev, blanks)
		}
	}

	text := encode.String(root, encode.BlankBefore(func(f *ir.Node) int {
		return blanks[f]
	}))
	return text, text != string(raw), nil
}

// Ordered reports whether root's keys already follow ord, including any sub
// groupings. The linter uses this to flag out-of-order documents without
// rewriting them.
func Ordered(root *ir.Node, ord *policy.Order) bool {
	if ord == nil || root == nil || root.Type != ir.ObjectType {
		return true
	}
	c := root.Clone()
	reorder(c, ord.Top)
	if !equalKeys(root, c) {
		return false
	}
	for name, groups := range ord.Sub {
		v, ok := root.Get(name)
		if !ok || v.Type != ir.ObjectType {
			continue
		}
		cv := v.Clone()
		reorder(cv, groups)
		if !equalKeys(v, cv) {
			return false
		}
	}
	return true
}

func equalKeys(a, b *ir.Node) bool {
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i].String != b.Fields[i].String {
			return false
		}
	}
	return true
}

func topGroups(ord *policy.Order) [][]string {
	if ord == nil {
		return nil
	}
	return ord.Top
}

// reorder stable-sorts obj's fields by group rank, keys absent from every
// group forming an implicit trailing group. It returns the rank of each key
// node so blank decisions can spot group transitions.
func reorder(obj *ir.Node, groups [][]string) map[*ir.Node]int {
	ranks := make(map[*ir.Node]int, len(obj.Fields))
	for _, f := range obj.Fields {
		ranks[f] = rankOf(f.String, groups)
	}
	type pair struct {
		f, v *ir.Node
	}
	pairs := make([]pair, len(obj.Fields))
	for i := range obj.Fields {
		pairs[i] = pair{obj.Fields[i], obj.Values[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return ranks[pairs[i].f] < ranks[pairs[j].f]
	})
	for i, p := range pairs {
		obj.Fields[i] = p.f
		obj.Values[i] = p.v
	}
	return ranks
}

func rankOf(key string, groups [][]string) int {
	for i, g := range groups {
		for _, k := range g {
			if k == key {
				return i
			}
		}
	}
	return len(groups)
}

// decideStrict applies the blank-line rules to the top-level keys and, via
// in_fields, one level into named fields. Precedence per key:
// before_fields override, then the between_groups transition rule. The very
// first key never gets a blank; keep reproduces the source's blank run
// verbatim.
func decideStrict(root *ir.Node, ranks map[*ir.Node]int, ev map[*ir.Node]int, lb policy.Linebreak, blanks map[*ir.Node]int) {
	between := lb.BetweenGroups != nil && *lb.BetweenGroups
	for i, f := range root.Fields {
		if mode, ok := lb.BeforeFields[f.String]; ok {
			switch mode {
			case blankKeep:
				if i > 0 {
					blanks[f] = ev[f]
				}
			case blankNone:
				blanks[f] = 0
			}
			continue
		}
		if between && i > 0 && ranks[f] != ranks[root.Fields[i-1]] {
			blanks[f] = 1
		}
	}
	for i, f := range root.Fields {
		mode, ok := lb.InFields[f.String]
		if !ok {
			continue
		}
		v := root.Values[i]
		if v.Type != ir.ObjectType {
			continue
		}
		for j, c := range v.Fields {
			switch mode {
			case blankKeep:
				if j > 0 {
					blanks[c] = ev[c]
				} else {
					blanks[c] = 0
				}
			case blankNone:
				blanks[c] = 0
			}
		}
	}
}

// decideFromEvidence reproduces the source's blank lines verbatim at every
// level.
func decideFromEvidence(node *ir.Node, ev map[*ir.Node]int, blanks map[*ir.Node]int) {
	switch node.Type {
	case ir.ObjectType:
		for i, f := range node.Fields {
			if i > 0 && ev[f] > 0 {
				blanks[f] = ev[f]
			}
			decideFromEvidence(node.Values[i], ev, blanks)
		}
	case ir.ArrayType:
		for _, v := range node.Values {
			decideFromEvidence(v, ev, blanks)
		}
	}
}

// blankEvidence records, for every object key in the document, how many
// blank source lines sit immediately above the key.
func blankEvidence(raw []byte, root *ir.Node) map[*ir.Node]int {
	lines := bytes.Split(raw, []byte("\n"))
	ev := make(map[*ir.Node]int)
	var walk func(n *ir.Node)
	walk = func(n *ir.Node) {
		switch n.Type {
		case ir.ObjectType:
			for i, f := range n.Fields {
				for j := f.Line - 2; j >= 0 && j < len(lines) && len(bytes.TrimSpace(lines[j])) == 0; j-- {
					ev[f]++
				}
				walk(n.Values[i])
			}
		case ir.ArrayType:
			for _, v := range n.Values {
				walk(v)
			}
		}
	}
	if root != nil {
		walk(root)
	}
	return ev
}

// effectiveLinebreak merges the policy's linebreak section with overrides,
// override entries winning key by key.
func effectiveLinebreak(pol, over *policy.Linebreak) policy.Linebreak {
	var lb policy.Linebreak
	if pol != nil {
		lb.BetweenGroups = pol.BetweenGroups
		lb.BeforeFields = copyModes(pol.BeforeFields)
		lb.InFields = copyModes(pol.InFields)
	}
	if over != nil {
		if over.BetweenGroups != nil {
			lb.BetweenGroups = over.BetweenGroups
		}
		if over.BeforeFields != nil {
			if lb.BeforeFields == nil {
				lb.BeforeFields = map[string]string{}
			}
			for k, v := range over.BeforeFields {
				lb.BeforeFields[k] = v
			}
		}
		if over.InFields != nil {
			if lb.InFields == nil {
				lb.InFields = map[string]string{}
			}
			for k, v := range over.InFields {
				lb.InFields[k] = v
			}
		}
	}
	return lb
}

func copyModes(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

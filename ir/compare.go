package ir

import (
	"cmp"
	"sort"
	"strconv"
	"strings"
)

// Compare returns an integer comparing two nodes structurally.
// The result is 0 if a==b, -1 if a < b, and +1 if a > b. Nodes of different
// types order by type rank: Null < Bool < Number < String < Array < Object.
func Compare(a, b *Node) int {
	if a == b {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if c := cmp.Compare(rank(a.Type), rank(b.Type)); c != 0 {
		return c
	}

	switch a.Type {
	case NullType:
		return 0
	case BoolType:
		if a.Bool == b.Bool {
			return 0
		}
		if !a.Bool {
			return -1
		}
		return 1
	case NumberType:
		return compareNumbers(a, b)
	case StringType:
		return strings.Compare(a.String, b.String)
	case ArrayType:
		return compareValues(a, b)
	case ObjectType:
		return compareObjects(a, b)
	}
	return 0
}

// Equal reports whether two nodes are structurally equal. Objects compare by
// key set and values, not by key order.
func Equal(a, b *Node) bool {
	return Compare(a, b) == 0
}

func rank(t Type) int {
	switch t {
	case NullType:
		return 0
	case BoolType:
		return 1
	case NumberType:
		return 2
	case StringType:
		return 3
	case ArrayType:
		return 4
	case ObjectType:
		return 5
	}
	return 100
}

func compareNumbers(a, b *Node) int {
	af, aok := a.numeric()
	bf, bok := b.numeric()
	if aok && bok {
		return cmp.Compare(af, bf)
	}
	if aok != bok {
		if aok {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Number, b.Number)
}

func (n *Node) numeric() (float64, bool) {
	if n.Int64 != nil {
		return float64(*n.Int64), true
	}
	if n.Float64 != nil {
		return *n.Float64, true
	}
	if n.Number != "" {
		if f, err := strconv.ParseFloat(n.Number, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func compareValues(a, b *Node) int {
	n := min(len(a.Values), len(b.Values))
	for i := 0; i < n; i++ {
		if c := Compare(a.Values[i], b.Values[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a.Values), len(b.Values))
}

// compareObjects orders by size, then by sorted key sequence, then by the
// values under those keys. Key order inside the document is deliberately
// irrelevant here: equality must survive reordering.
func compareObjects(a, b *Node) int {
	if c := cmp.Compare(len(a.Fields), len(b.Fields)); c != 0 {
		return c
	}
	ak := a.Keys()
	bk := b.Keys()
	sortedA := append([]string(nil), ak...)
	sortedB := append([]string(nil), bk...)
	sort.Strings(sortedA)
	sort.Strings(sortedB)
	for i := range sortedA {
		if c := strings.Compare(sortedA[i], sortedB[i]); c != 0 {
			return c
		}
	}
	for _, k := range sortedA {
		av, _ := a.Get(k)
		bv, _ := b.Get(k)
		if c := Compare(av, bv); c != 0 {
			return c
		}
	}
	return 0
}

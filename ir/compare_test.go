package ir

import "testing"

func TestCompareScalars(t *testing.T) {
	tests := []struct {
		name string
		a, b *Node
		want int
	}{
		{"null equal", Null(), Null(), 0},
		{"null before bool", Null(), FromBool(false), -1},
		{"bool order", FromBool(false), FromBool(true), -1},
		{"number equal across spelling", &Node{Type: NumberType, Number: "1.0"}, FromInt(1), 0},
		{"number order", FromInt(1), FromInt(2), -1},
		{"string order", FromString("a"), FromString("b"), -1},
		{"number before string", FromInt(9), FromString("0"), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sign(Compare(tt.a, tt.b)); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
			if got := sign(Compare(tt.b, tt.a)); got != -tt.want {
				t.Errorf("Compare reversed = %d, want %d", got, -tt.want)
			}
		})
	}
}

func TestEqualObjectKeyOrderIrrelevant(t *testing.T) {
	a := Object()
	a.Put("x", FromInt(1))
	a.Put("y", FromString("s"))
	b := Object()
	b.Put("y", FromString("s"))
	b.Put("x", FromInt(1))
	if !Equal(a, b) {
		t.Errorf("objects with same entries in different order should be equal")
	}
	b.Put("x", FromInt(2))
	if Equal(a, b) {
		t.Errorf("objects with different values should not be equal")
	}
}

func TestEqualArrays(t *testing.T) {
	a := FromSlice([]*Node{FromInt(1), FromInt(2)})
	b := FromSlice([]*Node{FromInt(1), FromInt(2)})
	c := FromSlice([]*Node{FromInt(2), FromInt(1)})
	if !Equal(a, b) {
		t.Errorf("identical arrays should be equal")
	}
	if Equal(a, c) {
		t.Errorf("element order matters for arrays")
	}
}

func TestCloneIndependent(t *testing.T) {
	a := Object()
	a.Put("k", FromSlice([]*Node{FromInt(1)}))
	c := a.Clone()
	c.Put("k", FromInt(9))
	v, _ := a.Get("k")
	if v.Type != ArrayType {
		t.Errorf("mutating a clone changed the original")
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

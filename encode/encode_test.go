package encode

import (
	"testing"

	"github.com/nazahex/rigra/ir"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{`quote " inside`, `"quote \" inside"`},
		{"back\\slash", `"back\\slash"`},
		{"tab\there", `"tab\there"`},
		{"line\nbreak", `"line\nbreak"`},
		{"ctl\x01", `"ctl\u0001"`},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	inner := ir.Object()
	inner.Put("b", ir.FromInt(1))
	root := ir.Object()
	root.Put("a", inner)
	root.Put("empty", ir.Object())
	root.Put("arr", ir.FromSlice([]*ir.Node{ir.FromInt(1), ir.FromString("x")}))

	want := "{\n" +
		"  \"a\": {\n" +
		"    \"b\": 1\n" +
		"  },\n" +
		"  \"empty\": {},\n" +
		"  \"arr\": [\n" +
		"    1,\n" +
		"    \"x\"\n" +
		"  ]\n" +
		"}\n"
	if got := String(root); got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestBlankBeforeHook(t *testing.T) {
	root := ir.Object()
	root.Put("a", ir.FromInt(1))
	root.Put("b", ir.FromInt(2))
	root.Put("c", ir.FromInt(3))
	counts := map[string]int{"b": 1, "c": 2}
	got := String(root, BlankBefore(func(f *ir.Node) int { return counts[f.String] }))
	want := "{\n  \"a\": 1,\n\n  \"b\": 2,\n\n\n  \"c\": 3\n}\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompact(t *testing.T) {
	root := ir.Object()
	root.Put("a", ir.FromSlice([]*ir.Node{ir.Null(), ir.FromBool(true)}))
	if got, want := Compact(root), `{"a":[null,true]}`; got != want {
		t.Errorf("Compact = %s, want %s", got, want)
	}
}

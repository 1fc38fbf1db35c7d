package parse

import (
	"errors"
	"testing"

	"github.com/nazahex/rigra/encode"
	"github.com/nazahex/rigra/ir"
)

func TestParseOK(t *testing.T) {
	tests := []string{
		`null`,
		`true`,
		`false`,
		`22`,
		`-3.5`,
		`1e14`,
		`"hello"`,
		`"esc \" \\ \n é 😀"`,
		`[]`,
		`[1, 2, 3]`,
		`[[1],[2,[3]]]`,
		`{}`,
		`{"a": 1}`,
		`{"a": {"b": [true, null]}}`,
	}
	for _, in := range tests {
		if _, err := Parse([]byte(in)); err != nil {
			t.Errorf("Parse(%q): %v", in, err)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		``,
		`{`,
		`{"a":}`,
		`{"a" 1}`,
		`[1,]`,
		`"unterminated`,
		`tru`,
		`01`,
		`{"a":1} trailing`,
		`{'a':1}`,
	}
	for _, in := range tests {
		_, err := Parse([]byte(in))
		if err == nil {
			t.Errorf("Parse(%q): expected error", in)
			continue
		}
		if !errors.Is(err, ErrSyntax) {
			t.Errorf("Parse(%q): error %v does not wrap ErrSyntax", in, err)
		}
	}
}

// Number literals keep their source spelling through a parse/encode cycle.
func TestParseNumberSpelling(t *testing.T) {
	in := "{\n  \"a\": 1.50,\n  \"b\": 1e3,\n  \"c\": -0.0\n}\n"
	root, err := Parse([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if got := encode.String(root); got != in {
		t.Errorf("re-encoded:\n%s\nwant:\n%s", got, in)
	}
}

func TestParseKeyLines(t *testing.T) {
	in := "{\n  \"a\": 1,\n\n  \"b\": {\n    \"c\": 2\n  }\n}\n"
	root, err := Parse([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	wantLines := map[string]int{"a": 2, "b": 4}
	for _, f := range root.Fields {
		if want := wantLines[f.String]; f.Line != want {
			t.Errorf("key %q line = %d, want %d", f.String, f.Line, want)
		}
	}
	b, _ := root.Get("b")
	if b.Fields[0].Line != 5 {
		t.Errorf("nested key line = %d, want 5", b.Fields[0].Line)
	}
}

func TestParseObjectOrder(t *testing.T) {
	root, err := Parse([]byte(`{"z": 1, "a": 2, "m": 3}`))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"z", "a", "m"}
	got := root.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}
	if root.Type != ir.ObjectType {
		t.Fatalf("root type = %v", root.Type)
	}
}

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nazahex/rigra/checks"
	"github.com/nazahex/rigra/runner"
)

func lintResult() *runner.LintResult {
	return &runner.LintResult{
		Issues: []checks.Issue{
			{File: "a.json", Rule: "pkg", Severity: "error", Path: "$.name", Message: "bad"},
			{File: "b.json", Rule: "pkg", Severity: "warning", Path: "$", Message: "meh"},
		},
		Summary: runner.Summary{Errors: 1, Warnings: 1, Files: 2},
	}
}

func TestLintHuman(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, "human").Lint(lintResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"[ERROR]", "[WARN]", "a.json", "$.name", "rule=pkg", "errors=1 warnings=1 infos=0 files=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// buffers are not terminals, so no escape codes
	if strings.Contains(out, "\x1b[") {
		t.Errorf("unexpected color codes:\n%s", out)
	}
}

func TestLintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, ModeJSON).Lint(lintResult()); err != nil {
		t.Fatal(err)
	}
	var decoded runner.LintResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, buf.String())
	}
	if len(decoded.Issues) != 2 || decoded.Summary.Errors != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestFormatHuman(t *testing.T) {
	results := []runner.FormatResult{
		{File: "w.json", Changed: true, Wrote: true},
		{File: "p.json", Changed: true, Original: "{\n  \"a\": 1\n}\n", Preview: "{\n  \"a\": 2\n}\n"},
		{File: "n.json"},
	}
	var buf bytes.Buffer
	if err := NewPrinter(&buf, "human").Format(results, nil, false, true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"formatted: w.json", "--- p.json", `-  "a": 1`, `+  "a": 2`, "no changes: n.json"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSONSummary(t *testing.T) {
	results := []runner.FormatResult{
		{File: "w.json", Changed: true, Wrote: true},
		{File: "n.json"},
	}
	var buf bytes.Buffer
	if err := NewPrinter(&buf, ModeJSON).Format(results, nil, true, false); err != nil {
		t.Fatal(err)
	}
	var rep struct {
		Summary struct {
			Changed int `json:"changed"`
			Wrote   int `json:"wrote"`
			Total   int `json:"total"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Summary.Changed != 1 || rep.Summary.Wrote != 1 || rep.Summary.Total != 2 {
		t.Errorf("summary = %+v", rep.Summary)
	}
}

func TestSyncHuman(t *testing.T) {
	actions := []runner.SyncAction{
		{RuleID: "a", Source: "t/a", Target: ".a", Wrote: true, WouldWrite: true},
		{RuleID: "b", Source: "t/b", Target: ".b", WouldWrite: true},
		{RuleID: "c", Source: "t/c", Target: ".c"},
	}
	errs := []runner.RunError{{Message: "boom"}}
	var buf bytes.Buffer
	if err := NewPrinter(&buf, "human").Sync(actions, errs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"synced: t/a -> .a", "would sync: t/b -> .b", "up to date: .c", "error: boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLineDiff(t *testing.T) {
	got := lineDiff("a\nb\nc\n", "a\nx\nc\n")
	for _, want := range []string{" a\n", "-b\n", "+x\n", " c\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("diff missing %q:\n%s", want, got)
		}
	}
}

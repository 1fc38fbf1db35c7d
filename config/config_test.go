package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetectRepoRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rigra.toml", "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := DetectRepoRoot(nested); got != root {
		t.Errorf("DetectRepoRoot = %q, want %q", got, root)
	}
}

func TestDetectRepoRootGit(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "sub")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := DetectRepoRoot(nested); got != root {
		t.Errorf("DetectRepoRoot = %q, want %q", got, root)
	}
}

func TestResolveEffectiveTOML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rigra.toml", `
index = "conventions/acme/index.toml"
scope = "repo"
output = "json"

[format]
write = true
strictLineBreak = true

[format.linebreak]
between_groups = false

[format.linebreak.before_fields]
license = "keep"

[format.linebreak.in_fields]
scripts = "keep"

[rules.pkg]
patterns = ["apps/*/package.json"]

[sync]
ignore = ["editorconfig"]

[sync.config.ts-base]
target = "tsconfig.base.json"

[sync.config.ts-base.merge]
keepPaths = ["compilerOptions.paths"]

[sync.config.ts-base.merge.array]
"compilerOptions.types" = "union"

[sync.hooks.post]
ts-base = ["echo done"]
`)
	eff, err := ResolveEffective(Flags{RepoRoot: root})
	if err != nil {
		t.Fatal(err)
	}
	if eff.Index != "conventions/acme/index.toml" || !eff.IndexConfigured {
		t.Errorf("index = %q configured=%v", eff.Index, eff.IndexConfigured)
	}
	if eff.Output != "json" || eff.Scope != "repo" {
		t.Errorf("output=%q scope=%q", eff.Output, eff.Scope)
	}
	if !eff.Write || !eff.StrictLineBreak {
		t.Errorf("write=%v strict=%v", eff.Write, eff.StrictLineBreak)
	}
	if eff.Linebreak == nil || eff.Linebreak.BetweenGroups == nil || *eff.Linebreak.BetweenGroups {
		t.Errorf("linebreak = %+v", eff.Linebreak)
	}
	if eff.Linebreak.BeforeFields["license"] != "keep" || eff.Linebreak.InFields["scripts"] != "keep" {
		t.Errorf("linebreak maps = %+v", eff.Linebreak)
	}
	if got := eff.PatternOverrides["pkg"]; len(got) != 1 || got[0] != "apps/*/package.json" {
		t.Errorf("pattern overrides = %v", eff.PatternOverrides)
	}
	if eff.Sync == nil || len(eff.Sync.Ignore) != 1 {
		t.Fatalf("sync = %+v", eff.Sync)
	}
	rc, ok := eff.Sync.Config["ts-base"]
	if !ok || rc.Target != "tsconfig.base.json" || rc.Merge == nil {
		t.Fatalf("sync config = %+v", eff.Sync.Config)
	}
	if rc.Merge.Array["compilerOptions.types"] != "union" {
		t.Errorf("merge array = %+v", rc.Merge.Array)
	}
	if eff.Sync.Hooks == nil || len(eff.Sync.Hooks.Post["ts-base"]) != 1 {
		t.Errorf("hooks = %+v", eff.Sync.Hooks)
	}
}

func TestResolveEffectiveYAML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rigra.yaml", `
index: convention/index.toml
output: human
format:
  diff: true
`)
	eff, err := ResolveEffective(Flags{RepoRoot: root})
	if err != nil {
		t.Fatal(err)
	}
	if eff.Index != "convention/index.toml" {
		t.Errorf("index = %q", eff.Index)
	}
	if !eff.Diff || eff.Write {
		t.Errorf("diff=%v write=%v", eff.Diff, eff.Write)
	}
	// strictLineBreak defaults to true when unspecified
	if !eff.StrictLineBreak {
		t.Errorf("strictLineBreak should default to true")
	}
}

func TestResolveEffectiveDefaults(t *testing.T) {
	root := t.TempDir()
	eff, err := ResolveEffective(Flags{RepoRoot: root})
	if err != nil {
		t.Fatal(err)
	}
	if eff.Scope != "repo" || eff.Output != "human" {
		t.Errorf("scope=%q output=%q", eff.Scope, eff.Output)
	}
	if eff.IndexConfigured {
		t.Errorf("index should not be configured by default")
	}
	if !eff.StrictLineBreak {
		t.Errorf("strictLineBreak should default to true")
	}
}

func TestFlagsWinOverConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rigra.toml", `
output = "json"

[format]
write = false
`)
	w := true
	eff, err := ResolveEffective(Flags{RepoRoot: root, Output: "human", Write: &w})
	if err != nil {
		t.Fatal(err)
	}
	if eff.Output != "human" {
		t.Errorf("output = %q, want flag's human", eff.Output)
	}
	if !eff.Write {
		t.Errorf("write flag should win over config")
	}
}

func TestLoadBadConfigErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "rigra.toml", "index = [not toml")
	if _, err := ResolveEffective(Flags{RepoRoot: root}); err == nil {
		t.Errorf("invalid config should be a fatal error")
	}
}

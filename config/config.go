// Package config discovers the repository root and loads the client
// configuration from rigra.toml or rigra.yaml|yml, then resolves it against
// CLI flags into the effective settings commands run with. Precedence is
// CLI over config file over defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	yaml "github.com/goccy/go-yaml"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/nazahex/rigra/merge"
	"github.com/nazahex/rigra/policy"
)

// File is the raw client configuration as written in rigra.toml|yaml.
// Pointer fields distinguish "unset" from an explicit false.
type File struct {
	Index  string             `toml:"index" yaml:"index"`
	Scope  string             `toml:"scope" yaml:"scope"`
	Output string             `toml:"output" yaml:"output"`
	Format *FormatCfg         `toml:"format" yaml:"format"`
	Rules  map[string]RuleCfg `toml:"rules" yaml:"rules"`
	Sync   *SyncClientCfg     `toml:"sync" yaml:"sync"`
}

// FormatCfg is the [format] section.
type FormatCfg struct {
	Write           *bool             `toml:"write" yaml:"write"`
	Diff            *bool             `toml:"diff" yaml:"diff"`
	Check           *bool             `toml:"check" yaml:"check"`
	StrictLineBreak *bool             `toml:"strictLineBreak" yaml:"strictLineBreak"`
	Linebreak       *policy.Linebreak `toml:"linebreak" yaml:"linebreak"`
}

// RuleCfg overrides one index rule, keyed by rule id under [rules.<id>].
type RuleCfg struct {
	Patterns []string `toml:"patterns" yaml:"patterns"`
}

// SyncClientCfg is the [sync] section: rule ids to skip, per-id overrides,
// and post-write hooks.
type SyncClientCfg struct {
	Ignore []string               `toml:"ignore" yaml:"ignore"`
	Config map[string]SyncRuleCfg `toml:"config" yaml:"config"`
	Hooks  *SyncHooks             `toml:"hooks" yaml:"hooks"`
}

// SyncRuleCfg overrides one sync rule: a different target path and, for
// structured targets, the merge paths.
type SyncRuleCfg struct {
	Target string        `toml:"target" yaml:"target"`
	Merge  *merge.Config `toml:"merge" yaml:"merge"`
}

// SyncHooks maps a rule id to shell commands run after that rule writes.
type SyncHooks struct {
	Post map[string][]string `toml:"post" yaml:"post"`
}

// DetectRepoRoot walks up from start until it finds a rigra config file or a
// .git entry; when neither exists it returns start.
func DetectRepoRoot(start string) string {
	cur, err := filepath.Abs(start)
	if err != nil {
		cur = start
	}
	for {
		for _, name := range []string{"rigra.toml", "rigra.yaml", "rigra.yml"} {
			if _, err := os.Stat(filepath.Join(cur, name)); err == nil {
				return cur
			}
		}
		if _, err := os.Stat(filepath.Join(cur, ".git")); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return start
		}
		cur = parent
	}
}

// Load reads the config file at root, trying rigra.toml first, then
// rigra.yaml and rigra.yml. A missing file is not an error; the returned
// File is empty.
func Load(root string) (*File, error) {
	p := filepath.Join(root, "rigra.toml")
	if d, err := os.ReadFile(p); err == nil {
		var f File
		if err := toml.Unmarshal(d, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		return &f, nil
	}
	for _, name := range []string{"rigra.yaml", "rigra.yml"} {
		p := filepath.Join(root, name)
		if d, err := os.ReadFile(p); err == nil {
			var f File
			if err := yaml.Unmarshal(d, &f); err != nil {
				return nil, fmt.Errorf("parse %s: %w", p, err)
			}
			return &f, nil
		}
	}
	return &File{}, nil
}

// Effective is the fully-resolved configuration commands run with.
type Effective struct {
	RepoRoot        string
	Index           string
	IndexConfigured bool
	Scope           string
	Output          string
	Write           bool
	Diff            bool
	Check           bool
	StrictLineBreak bool
	Linebreak       *policy.Linebreak

	PatternOverrides map[string][]string
	Sync             *SyncClientCfg
}

// Flags carries the CLI-level overrides fed into ResolveEffective. Empty
// strings and nil bools mean "not set".
type Flags struct {
	RepoRoot string
	Index    string
	Scope    string
	Output   string
	Write    *bool
	Diff     *bool
	Check    *bool
}

// ResolveEffective discovers the repo root, loads the config file, and
// merges it with flags. A config parse failure is returned as an error so
// callers can report it as fatal rather than silently running on defaults.
func ResolveEffective(flags Flags) (*Effective, error) {
	start := flags.RepoRoot
	if start == "" {
		start = "."
	}
	root := DetectRepoRoot(start)
	cfg, err := Load(root)
	if err != nil {
		return nil, err
	}

	eff := &Effective{
		RepoRoot:        root,
		Scope:           pick(flags.Scope, cfg.Scope, "repo"),
		Output:          pick(flags.Output, cfg.Output, "human"),
		StrictLineBreak: true,
		Sync:            cfg.Sync,
	}
	eff.Index = pick(flags.Index, cfg.Index, "")
	eff.IndexConfigured = eff.Index != ""

	if cfg.Format != nil {
		eff.Write = boolOr(cfg.Format.Write, false)
		eff.Diff = boolOr(cfg.Format.Diff, false)
		eff.Check = boolOr(cfg.Format.Check, false)
		eff.StrictLineBreak = boolOr(cfg.Format.StrictLineBreak, true)
		eff.Linebreak = cfg.Format.Linebreak
	}
	if flags.Write != nil {
		eff.Write = *flags.Write
	}
	if flags.Diff != nil {
		eff.Diff = *flags.Diff
	}
	if flags.Check != nil {
		eff.Check = *flags.Check
	}

	if len(cfg.Rules) > 0 {
		eff.PatternOverrides = make(map[string][]string, len(cfg.Rules))
		for id, rc := range cfg.Rules {
			eff.PatternOverrides[id] = rc.Patterns
		}
	}
	return eff, nil
}

func pick(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func boolOr(p *bool, def bool) bool {
	if p != nil {
		return *p
	}
	return def
}

// Package runner drives the lint, format, and sync commands: it resolves
// the convention index, matches documents against rule patterns, and
// aggregates per-file results for the output layer.
package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nazahex/rigra/config"
	"github.com/nazahex/rigra/conv"
	"github.com/nazahex/rigra/debug"
	"github.com/nazahex/rigra/ir"
	"github.com/nazahex/rigra/parse"
)

// RunError is a non-fatal failure surfaced alongside results.
type RunError struct {
	Message string `json:"message"`
}

func runErrorf(format string, args ...any) RunError {
	return RunError{Message: fmt.Sprintf(format, args...)}
}

// Runner holds the effective configuration for one invocation.
type Runner struct {
	Eff *config.Effective
}

func New(eff *config.Effective) *Runner {
	return &Runner{Eff: eff}
}

// IndexPath resolves the configured index to a file path. conv: references
// point into the convention cache; anything else is relative to the repo
// root.
func (r *Runner) IndexPath() (string, error) {
	if r.Eff.Index == "" {
		return "", fmt.Errorf("no index configured; pass --index or set index in rigra.toml")
	}
	if ref, ok := conv.ParseRef(r.Eff.Index); ok {
		p := conv.ResolvePath(r.Eff.RepoRoot, ref)
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("convention %s@%s not installed; run 'rigra conv add'", ref.Name, ref.Version)
		}
		return p, nil
	}
	p := filepath.Join(r.Eff.RepoRoot, r.Eff.Index)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("index file not found: %s (pass --index or configure rigra.toml)", p)
	}
	return p, nil
}

// patternsFor applies the client's per-rule pattern override.
func (r *Runner) patternsFor(ruleID string, patterns []string) []string {
	if ov, ok := r.Eff.PatternOverrides[ruleID]; ok && len(ov) > 0 {
		return ov
	}
	return patterns
}

// matchFiles globs patterns against the repo root, returning repo-relative
// slash paths, deduplicated and sorted. Matches under .git and .rigra are
// dropped.
func (r *Runner) matchFiles(patterns []string) ([]string, error) {
	fsys := os.DirFS(r.Eff.RepoRoot)
	seen := map[string]bool{}
	var out []string
	for _, pat := range patterns {
		matches, err := doublestar.Glob(fsys, pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pat, err)
		}
		for _, m := range matches {
			if hidden(m) || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	if debug.Match() {
		debug.Logf("match %v -> %v\n", patterns, out)
	}
	return out, nil
}

func hidden(rel string) bool {
	return rel == ".rigra" || rel == ".git" ||
		strings.HasPrefix(rel, ".rigra/") || strings.HasPrefix(rel, ".git/")
}

// Document is one manifest loaded for linting or formatting.
type Document struct {
	// Path is repo-relative, slash separated.
	Path string
	Raw  []byte
	Root *ir.Node
}

func (r *Runner) loadDocument(rel string) (*Document, error) {
	raw, err := os.ReadFile(filepath.Join(r.Eff.RepoRoot, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	root, err := parse.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}
	return &Document{Path: rel, Raw: raw, Root: root}, nil
}

package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/nazahex/rigra/config"
	"github.com/nazahex/rigra/debug"
	"github.com/nazahex/rigra/encode"
	"github.com/nazahex/rigra/ir"
	"github.com/nazahex/rigra/merge"
	"github.com/nazahex/rigra/parse"
	"github.com/nazahex/rigra/policy"
)

// SyncAction is one sync rule's outcome. WouldWrite reports drift even in
// dry runs; Wrote is only set when the run actually wrote.
type SyncAction struct {
	RuleID     string `json:"rule"`
	Source     string `json:"source"`
	Target     string `json:"target"`
	Wrote      bool   `json:"wrote"`
	WouldWrite bool   `json:"wouldWrite"`
}

// Sync applies the index's sync policy for the effective scope. When write
// is true, drifting targets are rewritten and each written rule's post
// hooks run afterwards.
func (r *Runner) Sync(ctx context.Context, write bool) ([]SyncAction, []RunError, error) {
	idxPath, err := r.IndexPath()
	if err != nil {
		return nil, nil, err
	}
	idx, err := policy.LoadIndex(idxPath)
	if err != nil {
		return nil, nil, err
	}
	if idx.Sync == "" {
		return nil, nil, errMissingSyncRef
	}
	idxDir := filepath.Dir(idxPath)
	sp, err := policy.LoadSyncPolicy(filepath.Join(idxDir, idx.Sync))
	if err != nil {
		return nil, nil, err
	}

	actions, errs := r.applySyncRules(sp, idxDir, write)

	if write {
		for _, a := range actions {
			if !a.Wrote {
				continue
			}
			for _, cmd := range r.postHooks(a.RuleID) {
				c := exec.CommandContext(ctx, "sh", "-lc", cmd)
				c.Dir = r.Eff.RepoRoot
				if err := c.Run(); err != nil {
					errs = append(errs, runErrorf("post hook for %s (%q): %v", a.RuleID, cmd, err))
				}
			}
		}
	}
	return actions, errs, nil
}

var errMissingSyncRef = &missingSyncRefError{}

type missingSyncRefError struct{}

func (*missingSyncRefError) Error() string {
	return `index missing 'sync' policy reference; add sync = "sync.toml" to the index`
}

// applySyncRules evaluates each enabled rule and copies or merges its
// source into the target. idxDir anchors relative source paths.
func (r *Runner) applySyncRules(sp *policy.SyncPolicy, idxDir string, write bool) ([]SyncAction, []RunError) {
	var actions []SyncAction
	var errs []RunError
	ignored := map[string]bool{}
	var cfgMap map[string]config.SyncRuleCfg
	if r.Eff.Sync != nil {
		for _, id := range r.Eff.Sync.Ignore {
			ignored[id] = true
		}
		cfgMap = r.Eff.Sync.Config
	}

	for _, rule := range sp.Sync {
		if ignored[rule.ID] {
			continue
		}
		enabled, err := r.ruleEnabled(rule)
		if err != nil {
			errs = append(errs, runErrorf("rule %s: %v", rule.ID, err))
			continue
		}
		if !enabled {
			continue
		}
		src := filepath.Join(idxDir, filepath.FromSlash(rule.Source))
		target := rule.Target
		var ruleCfg *config.SyncRuleCfg
		if c, ok := cfgMap[rule.ID]; ok {
			ruleCfg = &c
			if c.Target != "" {
				target = c.Target
			}
		}
		dst := filepath.Join(r.Eff.RepoRoot, filepath.FromSlash(target))

		wrote, would := r.applyOne(rule, src, dst, target, ruleCfg, write, &errs)
		if debug.Sync() {
			debug.Logf("sync %s: %s -> %s wrote=%v would=%v\n", rule.ID, rule.Source, target, wrote, would)
		}
		actions = append(actions, SyncAction{
			RuleID:     rule.ID,
			Source:     rule.Source,
			Target:     target,
			Wrote:      wrote,
			WouldWrite: would,
		})
	}
	return actions, errs
}

// ruleEnabled decides whether a rule applies to the effective scope. A
// when_expr wins over the token list; the empty list and the *, any, and
// all tokens always match.
func (r *Runner) ruleEnabled(rule policy.SyncRule) (bool, error) {
	if rule.WhenExpr != "" {
		prog, err := expr.Compile(rule.WhenExpr, expr.Env(map[string]any{"scope": ""}), expr.AsBool())
		if err != nil {
			return false, err
		}
		out, err := expr.Run(prog, map[string]any{"scope": r.Eff.Scope})
		if err != nil {
			return false, err
		}
		return out.(bool), nil
	}
	w := strings.TrimSpace(rule.When)
	if w == "" || w == "*" || strings.EqualFold(w, "any") || strings.EqualFold(w, "all") {
		return true, nil
	}
	for _, tok := range strings.FieldsFunc(w, func(c rune) bool { return c == ',' || c == '|' }) {
		if strings.EqualFold(strings.TrimSpace(tok), r.Eff.Scope) {
			return true, nil
		}
	}
	return false, nil
}

// applyOne dispatches a rule to the merge path for structured targets with
// a client merge config, and to plain copying otherwise.
func (r *Runner) applyOne(rule policy.SyncRule, src, dst, target string, ruleCfg *config.SyncRuleCfg, write bool, errs *[]RunError) (wrote, would bool) {
	if strings.EqualFold(rule.Format, "json") && ruleCfg != nil && ruleCfg.Merge != nil {
		return r.applyMerge(src, dst, target, ruleCfg.Merge, write, errs)
	}
	return copyTree(src, dst, write, errs)
}

// applyMerge merges the template into the existing target and writes the
// result unless its fingerprint already matches the target's content. An
// unparseable template falls back to a plain copy; an unparseable or
// missing target merges against null.
func (r *Runner) applyMerge(src, dst, target string, mcfg *merge.Config, write bool, errs *[]RunError) (wrote, would bool) {
	raw, err := os.ReadFile(src)
	if err != nil {
		*errs = append(*errs, runErrorf("read template %s: %v", src, err))
		return false, false
	}
	template, err := parse.Parse(raw)
	if err != nil {
		return copyTree(src, dst, write, errs)
	}
	dest := ir.Null()
	if d, err := os.ReadFile(dst); err == nil {
		if n, err := parse.Parse(d); err == nil {
			dest = n
		}
	}

	merged := merge.Merge(template, dest, *mcfg)
	out := encode.String(merged)
	fp := merge.Fingerprint(out)
	if d, err := os.ReadFile(dst); err == nil && merge.Fingerprint(string(d)) == fp {
		return false, false
	}
	if debug.Merge() {
		debug.Logf("merge %s fingerprint=%s\n", target, fp)
	}
	if !write {
		return false, true
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		*errs = append(*errs, runErrorf("prepare %s: %v", dst, err))
		return false, true
	}
	if err := os.WriteFile(dst, []byte(out), 0o644); err != nil {
		*errs = append(*errs, runErrorf("write %s: %v", dst, err))
		return false, true
	}
	store := merge.NewChecksumStore(r.Eff.RepoRoot)
	if err := store.Write(target, fp); err != nil {
		*errs = append(*errs, runErrorf("write checksum for %s: %v", target, err))
	}
	return true, true
}

// copyTree copies a file, or a directory recursively, skipping files whose
// content already matches.
func copyTree(src, dst string, write bool, errs *[]RunError) (wrote, would bool) {
	info, err := os.Stat(src)
	if err != nil {
		*errs = append(*errs, runErrorf("source %s: %v", src, err))
		return false, false
	}
	if info.IsDir() {
		entries, err := os.ReadDir(src)
		if err != nil {
			*errs = append(*errs, runErrorf("read dir %s: %v", src, err))
			return false, false
		}
		if write {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				*errs = append(*errs, runErrorf("prepare %s: %v", dst, err))
				return false, false
			}
		}
		for _, e := range entries {
			w, ww := copyTree(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name()), write, errs)
			wrote = wrote || w
			would = would || ww
		}
		return wrote, would
	}

	if sameContent(src, dst) {
		return false, false
	}
	if !write {
		return false, true
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		*errs = append(*errs, runErrorf("prepare %s: %v", dst, err))
		return false, true
	}
	d, err := os.ReadFile(src)
	if err != nil {
		*errs = append(*errs, runErrorf("read %s: %v", src, err))
		return false, true
	}
	if err := os.WriteFile(dst, d, 0o644); err != nil {
		*errs = append(*errs, runErrorf("copy %s -> %s: %v", src, dst, err))
		return false, true
	}
	return true, true
}

func sameContent(src, dst string) bool {
	sd, err := os.ReadFile(src)
	if err != nil {
		return false
	}
	dd, err := os.ReadFile(dst)
	if err != nil {
		return false
	}
	return bytes.Equal(sd, dd)
}

func (r *Runner) postHooks(ruleID string) []string {
	if r.Eff.Sync == nil || r.Eff.Sync.Hooks == nil {
		return nil
	}
	return r.Eff.Sync.Hooks.Post[ruleID]
}

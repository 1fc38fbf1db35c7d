package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nazahex/rigra/debug"
	"github.com/nazahex/rigra/format"
	"github.com/nazahex/rigra/policy"
)

// FormatResult describes one document's formatting outcome. Original and
// Preview are only populated on unwritten changes so the output layer can
// show previews and diffs.
type FormatResult struct {
	File     string `json:"file"`
	Changed  bool   `json:"changed"`
	Wrote    bool   `json:"wrote"`
	Original string `json:"-"`
	Preview  string `json:"preview,omitempty"`
}

// FormatAll formats every document matched by the index rules. When the
// effective config says write, changed files are rewritten in place;
// otherwise changes are captured for preview. Write failures are non-fatal
// run errors.
func (r *Runner) FormatAll() ([]FormatResult, []RunError, error) {
	idxPath, err := r.IndexPath()
	if err != nil {
		return nil, nil, err
	}
	idx, err := policy.LoadIndex(idxPath)
	if err != nil {
		return nil, nil, err
	}
	idxDir := filepath.Dir(idxPath)

	var results []FormatResult
	var errs []RunError
	seen := map[string]bool{}

	for _, rule := range idx.Rules {
		pol, err := policy.LoadPolicy(filepath.Join(idxDir, rule.Policy))
		if err != nil {
			return nil, nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		files, err := r.matchFiles(r.patternsFor(rule.ID, rule.Patterns))
		if err != nil {
			errs = append(errs, runErrorf("rule %s: %v", rule.ID, err))
			continue
		}
		for _, f := range files {
			if seen[f] {
				continue
			}
			seen[f] = true
			doc, err := r.loadDocument(f)
			if err != nil {
				errs = append(errs, runErrorf("%v", err))
				continue
			}
			text, changed, err := format.Format(doc.Raw, doc.Root, format.Options{
				Order:     pol.Order,
				Linebreak: pol.Linebreak,
				Overrides: r.Eff.Linebreak,
				Strict:    r.Eff.StrictLineBreak,
			})
			if err != nil {
				errs = append(errs, runErrorf("%s: %v", f, err))
				continue
			}
			fr := FormatResult{File: f, Changed: changed}
			if changed {
				if r.Eff.Write {
					abs := filepath.Join(r.Eff.RepoRoot, filepath.FromSlash(f))
					if err := os.WriteFile(abs, []byte(text), 0o644); err != nil {
						errs = append(errs, runErrorf("write %s: %v", f, err))
					} else {
						fr.Wrote = true
					}
				} else {
					fr.Original = string(doc.Raw)
					fr.Preview = text
				}
			}
			if debug.Format() {
				debug.Logf("format %s changed=%v\n", f, changed)
			}
			results = append(results, fr)
		}
	}
	return results, errs, nil
}

package runner

import (
	"fmt"
	"path/filepath"

	"github.com/nazahex/rigra/checks"
	"github.com/nazahex/rigra/format"
	"github.com/nazahex/rigra/policy"
)

// Summary aggregates lint issues by severity plus the number of files
// examined.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Files    int `json:"files"`
}

type LintResult struct {
	Issues  []checks.Issue `json:"issues"`
	Summary Summary        `json:"summary"`
	Errors  []RunError     `json:"errors,omitempty"`
}

const (
	defaultOrderLevel   = "warning"
	defaultOrderMessage = "Fields are out of order; run 'rigra format' to fix"

	defaultSyncLintLevel   = "warning"
	defaultSyncLintMessage = "Target is out of sync with its template; run 'rigra sync --write'"
)

// Lint runs every index rule's checks over its matched documents, flags
// out-of-order keys, and reports sync drift. A missing or unparseable
// policy file is fatal; document-level failures become issues or run
// errors in the result.
func (r *Runner) Lint() (*LintResult, error) {
	idxPath, err := r.IndexPath()
	if err != nil {
		return nil, err
	}
	idx, err := policy.LoadIndex(idxPath)
	if err != nil {
		return nil, err
	}
	idxDir := filepath.Dir(idxPath)

	res := &LintResult{}
	engine := checks.NewEngine()
	seenFiles := map[string]bool{}

	for _, rule := range idx.Rules {
		pol, err := policy.LoadPolicy(filepath.Join(idxDir, rule.Policy))
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		files, err := r.matchFiles(r.patternsFor(rule.ID, rule.Patterns))
		if err != nil {
			res.Errors = append(res.Errors, runErrorf("rule %s: %v", rule.ID, err))
			continue
		}
		for _, f := range files {
			seenFiles[f] = true
			doc, err := r.loadDocument(f)
			if err != nil {
				res.Issues = append(res.Issues, checks.Issue{
					File:     f,
					Rule:     rule.ID,
					Severity: "error",
					Path:     "$",
					Message:  err.Error(),
				})
				continue
			}
			res.Issues = append(res.Issues, engine.Run(pol.Checks, f, doc.Root, rule.ID)...)
			if iss, ok := orderIssue(doc, pol.Order, rule.ID); ok {
				res.Issues = append(res.Issues, iss)
			}
		}
	}

	if idx.Sync != "" {
		if err := r.lintSync(idx, idxDir, res); err != nil {
			return nil, err
		}
	}

	for _, is := range res.Issues {
		switch is.Severity {
		case "error":
			res.Summary.Errors++
		case "warning", "warn":
			res.Summary.Warnings++
		default:
			res.Summary.Infos++
		}
	}
	res.Summary.Files = len(seenFiles)
	return res, nil
}

func orderIssue(doc *Document, ord *policy.Order, ruleID string) (checks.Issue, bool) {
	if ord == nil || format.Ordered(doc.Root, ord) {
		return checks.Issue{}, false
	}
	level := ord.Level
	if level == "" {
		level = defaultOrderLevel
	}
	msg := ord.Message
	if msg == "" {
		msg = defaultOrderMessage
	}
	return checks.Issue{
		File:     doc.Path,
		Rule:     ruleID,
		Severity: level,
		Path:     "$",
		Message:  msg,
	}, true
}

// lintSync reports, without writing, every sync rule whose target differs
// from what a sync would produce.
func (r *Runner) lintSync(idx *policy.Index, idxDir string, res *LintResult) error {
	sp, err := policy.LoadSyncPolicy(filepath.Join(idxDir, idx.Sync))
	if err != nil {
		return err
	}
	actions, errs := r.applySyncRules(sp, idxDir, false)
	res.Errors = append(res.Errors, errs...)
	for _, a := range actions {
		if !a.WouldWrite {
			continue
		}
		level, msg := syncLintFor(sp, a.RuleID)
		res.Issues = append(res.Issues, checks.Issue{
			File:     a.Target,
			Rule:     a.RuleID,
			Severity: level,
			Path:     "$",
			Message:  msg,
		})
	}
	return nil
}

func syncLintFor(sp *policy.SyncPolicy, ruleID string) (level, msg string) {
	level, msg = defaultSyncLintLevel, defaultSyncLintMessage
	if sp.Lint != nil {
		if sp.Lint.Level != "" {
			level = sp.Lint.Level
		}
		if sp.Lint.Message != "" {
			msg = sp.Lint.Message
		}
	}
	for _, rule := range sp.Sync {
		if rule.ID != ruleID {
			continue
		}
		if rule.Level != "" {
			level = rule.Level
		}
		if rule.Message != "" {
			msg = rule.Message
		}
		break
	}
	return level, msg
}

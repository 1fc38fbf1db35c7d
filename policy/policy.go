// Package policy models the versioned convention files that drive linting,
// formatting, and syncing: the index that maps file patterns to policies,
// the per-pattern policy (checks, key order, linebreaks), and the sync
// policy listing template rules.
package policy

import "github.com/nazahex/rigra/checks"

// Policy is one policy file applied to every document matching its rule.
type Policy struct {
	Checks    []checks.Rule `toml:"checks"`
	Order     *Order        `toml:"order"`
	Linebreak *Linebreak    `toml:"linebreak"`
}

// Order declares the canonical top-level key order as a ranked list of
// groups; keys within a group keep their relative document order. Sub maps a
// top-level field name to a grouping applied to that field's own children.
// Message and Level override the issue the linter emits when a document's
// keys are out of order.
type Order struct {
	Top [][]string            `toml:"top"`
	Sub map[string][][]string `toml:"sub"`

	Message string `toml:"message"`
	Level   string `toml:"level"`
}

// Linebreak values for before_fields/in_fields are "keep" or "none".
type Linebreak struct {
	BetweenGroups *bool             `toml:"between_groups"`
	BeforeFields  map[string]string `toml:"before_fields"`
	InFields      map[string]string `toml:"in_fields"`
}

// Index is the convention entry point: which policies apply to which file
// patterns, and where the sync policy lives.
type Index struct {
	Rules []Rule `toml:"rules"`

	// Sync is the path of the sync policy file, relative to the index.
	Sync string `toml:"sync"`
}

// Rule binds repo-relative glob patterns to a policy file (relative to the
// index file).
type Rule struct {
	ID       string   `toml:"id"`
	Patterns []string `toml:"patterns"`
	Policy   string   `toml:"policy"`
}

// SyncPolicy declares template synchronization rules plus the lint defaults
// used when reporting unsynced targets.
type SyncPolicy struct {
	Lint *SyncLintDefaults `toml:"lint"`
	Sync []SyncRule        `toml:"sync"`
}

type SyncLintDefaults struct {
	Level   string `toml:"level"`
	Message string `toml:"message"`
}

// SyncRule copies or merges one template into the repository. When is a
// comma/pipe separated scope token list; empty, "*", "any", and "all" always
// match. WhenExpr, when set, wins over When and is evaluated as an
// expression over {scope}. Format marks structured targets ("json" enables
// the merge engine when the client configured merge paths).
type SyncRule struct {
	ID       string `toml:"id"`
	Source   string `toml:"source"`
	Target   string `toml:"target"`
	When     string `toml:"when"`
	WhenExpr string `toml:"when_expr"`
	Format   string `toml:"format"`

	Level   string `toml:"level"`
	Message string `toml:"message"`
}

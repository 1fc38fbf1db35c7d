// Package checks evaluates declarative policy rules against parsed manifest
// documents, producing Issues. The engine is pure: it never mutates the
// document, never errors, and identical inputs yield an identical,
// order-stable issue list.
package checks

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nazahex/rigra/encode"
	"github.com/nazahex/rigra/ir"
	"github.com/nazahex/rigra/jsonpath"
)

// Check kinds.
const (
	KindRequired  = "required"
	KindType      = "type"
	KindConst     = "const"
	KindPattern   = "pattern"
	KindEnum      = "enum"
	KindMinLength = "minLength"
	KindMaxLength = "maxLength"
)

// Rule is one declarative check as authored in a policy file. Field targets a
// single path; Fields targets several with identical semantics, evaluated in
// declared order.
type Rule struct {
	Kind   string   `toml:"kind"`
	Field  string   `toml:"field,omitempty"`
	Fields []string `toml:"fields,omitempty"`

	Type    string `toml:"type,omitempty"`    // type: expected kind name
	Value   any    `toml:"value,omitempty"`   // const: expected value
	Pattern string `toml:"pattern,omitempty"` // pattern: regular expression
	Values  []any  `toml:"values,omitempty"`  // enum: allowed values
	Min     *int   `toml:"min,omitempty"`     // minLength
	Max     *int   `toml:"max,omitempty"`     // maxLength

	Message string `toml:"message,omitempty"`
	Level   string `toml:"level,omitempty"`
}

func (r *Rule) paths() []string {
	if len(r.Fields) > 0 {
		return r.Fields
	}
	if r.Field != "" {
		return []string{r.Field}
	}
	return nil
}

func (r *Rule) severity() string {
	if r.Level != "" {
		return r.Level
	}
	return "error"
}

// Issue is one diagnostic for a specific path and rule. Path is always in
// the normalized "$.a.b" form.
type Issue struct {
	File     string `json:"file"`
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

// Engine evaluates rules. The pattern cache is scoped to one engine, which
// callers discard at the end of a run.
type Engine struct {
	patterns map[string]*regexp.Regexp
}

func NewEngine() *Engine {
	return &Engine{patterns: map[string]*regexp.Regexp{}}
}

// Run evaluates rules in declared order against the document rooted at root.
// file and ruleID are carried through to the produced issues untouched.
func (e *Engine) Run(rules []Rule, file string, root *ir.Node, ruleID string) []Issue {
	var issues []Issue
	for i := range rules {
		issues = append(issues, e.runOne(&rules[i], file, root, ruleID)...)
	}
	return issues
}

func (e *Engine) runOne(r *Rule, file string, root *ir.Node, ruleID string) []Issue {
	var issues []Issue
	emit := func(path string, vars map[string]string, def string) {
		norm := jsonpath.Normalize(path)
		vars["path"] = norm
		tmpl := r.Message
		if tmpl == "" {
			tmpl = def
		}
		issues = append(issues, Issue{
			File:     file,
			Rule:     ruleID,
			Severity: r.severity(),
			Path:     norm,
			Message:  render(tmpl, vars),
		})
	}

	switch r.Kind {
	case KindRequired:
		for _, p := range r.paths() {
			if _, ok := jsonpath.Get(root, p); !ok {
				emit(p, map[string]string{
					"field": fieldName(p),
				}, "Field '{{field}}' is required at {{path}}")
			}
		}
	case KindType:
		for _, p := range r.paths() {
			v, ok := jsonpath.Get(root, p)
			if !ok {
				continue
			}
			if !kindMatches(v, r.Type) {
				emit(p, map[string]string{
					"field":  fieldName(p),
					"kind":   r.Type,
					"actual": v.Kind(),
				}, "Expected {{kind}} at {{path}}, got {{actual}}")
			}
		}
	case KindConst:
		expected := ir.FromAny(r.Value)
		for _, p := range r.paths() {
			got, ok := jsonpath.Get(root, p)
			if !ok {
				got = ir.Null()
			}
			if !ir.Equal(got, expected) {
				emit(p, map[string]string{
					"field":    fieldName(p),
					"expected": encode.Compact(expected),
					"actual":   encode.Compact(got),
				}, "Value at {{path}} must equal {{expected}}, got {{actual}}")
			}
		}
	case KindPattern:
		re := e.compile(r.Pattern)
		for _, p := range r.paths() {
			v, ok := jsonpath.Get(root, p)
			if !ok || v.Type != ir.StringType {
				continue
			}
			if !re.MatchString(v.String) {
				emit(p, map[string]string{
					"field":   fieldName(p),
					"pattern": r.Pattern,
					"actual":  v.String,
				}, "Value '{{actual}}' at {{path}} must match {{pattern}}")
			}
		}
	case KindEnum:
		allowed := make([]*ir.Node, len(r.Values))
		for i, av := range r.Values {
			allowed[i] = ir.FromAny(av)
		}
		for _, p := range r.paths() {
			actual, ok := jsonpath.Get(root, p)
			if !ok {
				continue
			}
			found := false
			for _, av := range allowed {
				if ir.Equal(av, actual) {
					found = true
					break
				}
			}
			if !found {
				emit(p, map[string]string{
					"field":    fieldName(p),
					"expected": encode.Compact(ir.FromSlice(allowed)),
					"actual":   encode.Compact(actual),
				}, "Value at {{path}} must be one of {{expected}}, got {{actual}}")
			}
		}
	case KindMinLength:
		if r.Min == nil {
			return nil
		}
		for _, p := range r.paths() {
			v, ok := jsonpath.Get(root, p)
			if !ok || v.Type != ir.StringType {
				continue
			}
			if len(v.String) < *r.Min {
				emit(p, map[string]string{
					"field":    fieldName(p),
					"expected": strconv.Itoa(*r.Min),
					"actual":   strconv.Itoa(len(v.String)),
				}, "String at {{path}} must have length >= {{expected}}, got {{actual}}")
			}
		}
	case KindMaxLength:
		if r.Max == nil {
			return nil
		}
		for _, p := range r.paths() {
			v, ok := jsonpath.Get(root, p)
			if !ok || v.Type != ir.StringType {
				continue
			}
			if len(v.String) > *r.Max {
				emit(p, map[string]string{
					"field":    fieldName(p),
					"expected": strconv.Itoa(*r.Max),
					"actual":   strconv.Itoa(len(v.String)),
				}, "String at {{path}} must have length <= {{expected}}, got {{actual}}")
			}
		}
	}
	return issues
}

// compile memoizes pattern compilation by pattern text for the lifetime of
// the engine. An invalid pattern degrades to a matcher that never matches,
// so every value fails the check rather than aborting the run.
func (e *Engine) compile(pattern string) *regexp.Regexp {
	if re, ok := e.patterns[pattern]; ok {
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = regexp.MustCompile(`\A\z.`) // matches nothing
	}
	e.patterns[pattern] = re
	return re
}

func kindMatches(v *ir.Node, kind string) bool {
	switch kind {
	case "string":
		return v.Type == ir.StringType
	case "number":
		return v.Type == ir.NumberType
	case "integer":
		return v.IsInteger()
	case "boolean":
		return v.Type == ir.BoolType
	case "array":
		return v.Type == ir.ArrayType
	case "object":
		return v.Type == ir.ObjectType
	case "null":
		return v.Type == ir.NullType
	}
	return false
}

// render substitutes the fixed placeholder set by literal text replacement.
// A field value that itself contains placeholder-looking text is substituted
// literally; that ambiguity is documented, not handled.
func render(tmpl string, vars map[string]string) string {
	out := tmpl
	for _, k := range []string{"field", "path", "expected", "actual", "pattern", "kind"} {
		if v, ok := vars[k]; ok {
			out = strings.ReplaceAll(out, "{{"+k+"}}", v)
		}
	}
	return out
}

func fieldName(path string) string {
	segs := jsonpath.Segments(path)
	return strings.Join(segs, ".")
}

// Package output renders lint, format, and sync results for people and for
// machines. The human form uses colors when writing to a terminal; json
// emits a stable structure with a trailing summary.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/nazahex/rigra/runner"
)

const ModeJSON = "json"

var (
	errLabel  = color.New(color.FgRed, color.Bold)
	warnLabel = color.New(color.FgYellow, color.Bold)
	infoLabel = color.New(color.FgBlue, color.Bold)
	okLabel   = color.New(color.FgGreen, color.Bold)
	fileStyle = color.New(color.Bold)
	delStyle  = color.New(color.FgRed)
	insStyle  = color.New(color.FgGreen)
)

// Printer writes results to w. Colors are used only in human mode, when w
// is a terminal, and NO_COLOR is unset.
type Printer struct {
	w    io.Writer
	mode string
}

func NewPrinter(w io.Writer, mode string) *Printer {
	color.NoColor = !useColors(w, mode)
	return &Printer{w: w, mode: mode}
}

func useColors(w io.Writer, mode string) bool {
	if mode == ModeJSON {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Lint prints issues one per line followed by a severity summary.
func (p *Printer) Lint(res *runner.LintResult) error {
	if p.mode == ModeJSON {
		return p.json(res)
	}
	for _, is := range res.Issues {
		var label string
		switch is.Severity {
		case "error":
			label = errLabel.Sprint("[ERROR]")
		case "warning", "warn":
			label = warnLabel.Sprint("[WARN]")
		default:
			label = infoLabel.Sprint("[INFO]")
		}
		fmt.Fprintf(p.w, "%s %s %s (rule=%s) %s\n", label, fileStyle.Sprint(is.File), is.Path, is.Rule, is.Message)
	}
	p.runErrors(res.Errors)
	fmt.Fprintf(p.w, "errors=%d warnings=%d infos=%d files=%d\n",
		res.Summary.Errors, res.Summary.Warnings, res.Summary.Infos, res.Summary.Files)
	return nil
}

type formatReport struct {
	Results []runner.FormatResult `json:"results"`
	Errors  []runner.RunError     `json:"errors,omitempty"`
	Summary formatSummary         `json:"summary"`
}

type formatSummary struct {
	Changed int `json:"changed"`
	Wrote   int `json:"wrote"`
	Total   int `json:"total"`
}

// Format prints per-file outcomes. Without write, changed files show a
// preview, or a line diff when diff is requested.
func (p *Printer) Format(results []runner.FormatResult, errs []runner.RunError, write, diff bool) error {
	if p.mode == ModeJSON {
		rep := formatReport{Results: results, Errors: errs}
		for _, r := range results {
			if r.Changed {
				rep.Summary.Changed++
			}
			if r.Wrote {
				rep.Summary.Wrote++
			}
		}
		rep.Summary.Total = len(results)
		return p.json(rep)
	}
	for _, r := range results {
		switch {
		case r.Wrote:
			fmt.Fprintf(p.w, "%s %s\n", okLabel.Sprint("formatted:"), fileStyle.Sprint(r.File))
		case r.Changed && diff:
			fmt.Fprintf(p.w, "--- %s\n%s", fileStyle.Sprint(r.File), lineDiff(r.Original, r.Preview))
		case r.Changed && !write:
			fmt.Fprintf(p.w, "--- %s\n%s", fileStyle.Sprint(r.File), r.Preview)
		case r.Changed:
			fmt.Fprintf(p.w, "%s %s\n", warnLabel.Sprint("needs format:"), r.File)
		default:
			fmt.Fprintf(p.w, "no changes: %s\n", r.File)
		}
	}
	p.runErrors(errs)
	return nil
}

type syncReport struct {
	Results []runner.SyncAction `json:"results"`
	Errors  []runner.RunError   `json:"errors,omitempty"`
	Summary syncSummary         `json:"summary"`
}

type syncSummary struct {
	Wrote      int `json:"wrote"`
	WouldWrite int `json:"wouldWrite"`
	Total      int `json:"total"`
}

// Sync prints each action's outcome and, in dry runs, the targets a write
// would touch.
func (p *Printer) Sync(actions []runner.SyncAction, errs []runner.RunError) error {
	if p.mode == ModeJSON {
		rep := syncReport{Results: actions, Errors: errs}
		for _, a := range actions {
			if a.Wrote {
				rep.Summary.Wrote++
			}
			if a.WouldWrite {
				rep.Summary.WouldWrite++
			}
		}
		rep.Summary.Total = len(actions)
		return p.json(rep)
	}
	for _, a := range actions {
		switch {
		case a.Wrote:
			fmt.Fprintf(p.w, "%s %s -> %s (rule=%s)\n", okLabel.Sprint("synced:"), a.Source, a.Target, a.RuleID)
		case a.WouldWrite:
			fmt.Fprintf(p.w, "%s %s -> %s (rule=%s)\n", warnLabel.Sprint("would sync:"), a.Source, a.Target, a.RuleID)
		default:
			fmt.Fprintf(p.w, "up to date: %s (rule=%s)\n", a.Target, a.RuleID)
		}
	}
	p.runErrors(errs)
	return nil
}

func (p *Printer) runErrors(errs []runner.RunError) {
	for _, e := range errs {
		fmt.Fprintf(p.w, "%s %s\n", errLabel.Sprint("error:"), e.Message)
	}
}

func (p *Printer) json(v any) error {
	d, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	d = append(d, '\n')
	_, err = p.w.Write(d)
	return err
}

// lineDiff renders old -> new as -/+ prefixed lines with unchanged context.
func lineDiff(old, new string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(old, new)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	var sb strings.Builder
	for _, d := range diffs {
		prefix, style := " ", (*color.Color)(nil)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix, style = "-", delStyle
		case diffmatchpatch.DiffInsert:
			prefix, style = "+", insStyle
		}
		for _, line := range splitKeep(d.Text) {
			out := prefix + line
			if style != nil {
				out = style.Sprint(prefix + strings.TrimSuffix(line, "\n"))
				out += "\n"
			}
			sb.WriteString(out)
		}
	}
	return sb.String()
}

// splitKeep splits text into lines, each retaining its newline.
func splitKeep(text string) []string {
	var out []string
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			out = append(out, text+"\n")
			break
		}
		out = append(out, text[:i+1])
		text = text[i+1:]
	}
	return out
}

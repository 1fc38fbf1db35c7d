package commands

import (
	"github.com/scott-cotton/cli"

	"github.com/nazahex/rigra/config"
	"github.com/nazahex/rigra/output"
	"github.com/nazahex/rigra/runner"
)

type formatConfig struct {
	*cli.Command
	RepoRoot string `cli:"name=repo-root desc='repository root (default: auto-detect)'"`
	Index    string `cli:"name=index desc='convention index path or conv: reference'"`
	Output   string `cli:"name=output aliases=o desc='output mode: human or json'"`
	Write    bool   `cli:"name=write aliases=w desc='rewrite changed files in place'"`
	Diff     bool   `cli:"name=diff desc='show a line diff instead of a full preview'"`
	Check    bool   `cli:"name=check desc='exit 1 when any file would change'"`
}

// FormatCommand returns the format subcommand.
func FormatCommand() *cli.Command {
	cfg := &formatConfig{}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "format").
		WithSynopsis("format - canonicalize matched manifests").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *formatConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	_ = args
	eff, err := config.ResolveEffective(config.Flags{
		RepoRoot: cfg.RepoRoot,
		Index:    cfg.Index,
		Output:   cfg.Output,
		Write:    flagBool(cfg.Write),
		Diff:     flagBool(cfg.Diff),
		Check:    flagBool(cfg.Check),
	})
	if err != nil {
		return fatal(cc, err)
	}
	// --check implies a dry run even when the config enables write.
	if eff.Check {
		eff.Write = false
	}
	results, errs, err := runner.New(eff).FormatAll()
	if err != nil {
		return fatal(cc, err)
	}
	if err := output.NewPrinter(cc.Out, eff.Output).Format(results, errs, eff.Write, eff.Diff); err != nil {
		return err
	}
	if eff.Check {
		for _, r := range results {
			if r.Changed {
				return cli.ExitCodeErr(1)
			}
		}
	}
	return nil
}

// flagBool maps a bool flag to the tri-state the config resolver expects: a
// flag left at its false default stays "unset" so the config file can still
// enable the behavior.
func flagBool(v bool) *bool {
	if !v {
		return nil
	}
	return &v
}

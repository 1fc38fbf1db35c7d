package commands

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/nazahex/rigra/config"
	"github.com/nazahex/rigra/output"
	"github.com/nazahex/rigra/runner"
)

type lintConfig struct {
	*cli.Command
	RepoRoot string `cli:"name=repo-root desc='repository root (default: auto-detect)'"`
	Index    string `cli:"name=index desc='convention index path or conv: reference'"`
	Scope    string `cli:"name=scope desc='sync/lint scope (default repo)'"`
	Output   string `cli:"name=output aliases=o desc='output mode: human or json'"`
}

// LintCommand returns the lint subcommand.
func LintCommand() *cli.Command {
	cfg := &lintConfig{}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "lint").
		WithSynopsis("lint - run convention checks over matched manifests").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *lintConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	_ = args
	eff, err := config.ResolveEffective(config.Flags{
		RepoRoot: cfg.RepoRoot,
		Index:    cfg.Index,
		Scope:    cfg.Scope,
		Output:   cfg.Output,
	})
	if err != nil {
		return fatal(cc, err)
	}
	res, err := runner.New(eff).Lint()
	if err != nil {
		return fatal(cc, err)
	}
	if err := output.NewPrinter(cc.Out, eff.Output).Lint(res); err != nil {
		return err
	}
	if res.Summary.Errors > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// fatal reports a configuration-level failure and maps it to exit code 2.
func fatal(cc *cli.Context, err error) error {
	fmt.Fprintf(cc.Out, "error: %v\n", err)
	return cli.ExitCodeErr(2)
}

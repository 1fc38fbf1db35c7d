package commands

import (
	"context"

	"github.com/scott-cotton/cli"

	"github.com/nazahex/rigra/config"
	"github.com/nazahex/rigra/output"
	"github.com/nazahex/rigra/runner"
)

type syncConfig struct {
	*cli.Command
	RepoRoot string `cli:"name=repo-root desc='repository root (default: auto-detect)'"`
	Index    string `cli:"name=index desc='convention index path or conv: reference'"`
	Scope    string `cli:"name=scope desc='scope the when clauses match against (default repo)'"`
	Output   string `cli:"name=output aliases=o desc='output mode: human or json'"`
	Write    bool   `cli:"name=write aliases=w desc='write drifting targets (default: dry run)'"`
}

// SyncCommand returns the sync subcommand.
func SyncCommand() *cli.Command {
	cfg := &syncConfig{}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "sync").
		WithSynopsis("sync - apply template sync rules for the current scope").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *syncConfig) run(cc *cli.Context, args []string) error {
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
	actions, errs, err := runner.New(eff).Sync(context.Background(), cfg.Write)
	if err != nil {
		return fatal(cc, err)
	}
	return output.NewPrinter(cc.Out, eff.Output).Sync(actions, errs)
}

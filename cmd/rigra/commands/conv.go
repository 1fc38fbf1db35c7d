package commands

import (
	"context"
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/nazahex/rigra/config"
	"github.com/nazahex/rigra/conv"
)

// ConvCommand returns the conv subcommand group.
func ConvCommand() *cli.Command {
	return cli.NewCommand("conv").
		WithSynopsis("conv - manage the convention cache").
		WithSubs(
			convAddCommand(),
			convListCommand(),
			convPathCommand(),
			convPruneCommand(),
		)
}

type convAddConfig struct {
	*cli.Command
	RepoRoot string `cli:"name=repo-root desc='repository root (default: auto-detect)'"`
}

func convAddCommand() *cli.Command {
	cfg := &convAddConfig{}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "add").
		WithSynopsis("add <name@version> <source> - install a convention bundle").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *convAddConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: conv add requires <name@version> <source>", cli.ErrUsage)
	}
	root := config.DetectRepoRoot(startDir(cfg.RepoRoot))
	dir, err := conv.Install(context.Background(), root, args[0], args[1])
	if err != nil {
		return fatal(cc, err)
	}
	fmt.Fprintf(cc.Out, "installed %s at %s\n", args[0], dir)
	return nil
}

type convListConfig struct {
	*cli.Command
	RepoRoot string `cli:"name=repo-root desc='repository root (default: auto-detect)'"`
}

func convListCommand() *cli.Command {
	cfg := &convListConfig{}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "list").
		WithSynopsis("list - list installed convention bundles").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *convListConfig) run(cc *cli.Context, args []string) error {
	if _, err := cfg.Parse(cc, args); err != nil {
		return err
	}
	for _, name := range conv.List(config.DetectRepoRoot(startDir(cfg.RepoRoot))) {
		fmt.Fprintln(cc.Out, name)
	}
	return nil
}

type convPathConfig struct {
	*cli.Command
	RepoRoot string `cli:"name=repo-root desc='repository root (default: auto-detect)'"`
}

func convPathCommand() *cli.Command {
	cfg := &convPathConfig{}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "path").
		WithSynopsis("path <conv:name@version[:subpath]> - print the cached location of a ref").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *convPathConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: conv path requires a conv: reference", cli.ErrUsage)
	}
	ref, ok := conv.ParseRef(args[0])
	if !ok {
		return fatal(cc, fmt.Errorf("invalid conv reference %q", args[0]))
	}
	root := config.DetectRepoRoot(startDir(cfg.RepoRoot))
	fmt.Fprintln(cc.Out, conv.ResolvePath(root, ref))
	return nil
}

type convPruneConfig struct {
	*cli.Command
	RepoRoot string `cli:"name=repo-root desc='repository root (default: auto-detect)'"`
}

func convPruneCommand() *cli.Command {
	cfg := &convPruneConfig{}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "prune").
		WithSynopsis("prune - remove the convention cache").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *convPruneConfig) run(cc *cli.Context, args []string) error {
	if _, err := cfg.Parse(cc, args); err != nil {
		return err
	}
	return conv.Prune(config.DetectRepoRoot(startDir(cfg.RepoRoot)))
}

func startDir(flag string) string {
	if flag == "" {
		return "."
	}
	return flag
}

// Package commands wires the rigra CLI: lint, format, sync, and convention
// cache management over a shared repository configuration.
package commands

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

var version = "0.1.0"

const usageText = `rigra - policy-driven manifest lint, format, and sync

Usage:
  rigra lint [--repo-root DIR] [--index PATH] [--scope S] [--output human|json]
  rigra format [--write] [--diff] [--check] [--index PATH] [--output human|json]
  rigra sync [--write] [--scope S] [--index PATH] [--output human|json]
  rigra conv add <name@version> <source>   Install a convention bundle
  rigra conv list                          List installed bundles
  rigra conv path <conv:ref>               Print the cached location of a ref
  rigra conv prune                         Remove the convention cache
  rigra version                            Print version

Conventions are addressed by conv:name@version[:subpath] references in the
index setting; sources are gh:owner/repo@tag or file:/path/to/archive.tar.gz.

Exit codes:
  0  success
  1  lint errors found, or --check detected unformatted files
  2  configuration failure (missing index, unreadable config)`

// Root returns the rigra root command.
func Root() *cli.Command {
	return cli.NewCommand("rigra").
		WithSynopsis("rigra - policy-driven manifest lint, format, and sync").
		WithDescription(usageText).
		WithSubs(
			LintCommand(),
			FormatCommand(),
			SyncCommand(),
			ConvCommand(),
			VersionCommand(),
		)
}

// VersionCommand returns the version subcommand.
func VersionCommand() *cli.Command {
	return cli.NewCommand("version").
		WithSynopsis("version - print the rigra version").
		WithRun(func(cc *cli.Context, args []string) error {
			fmt.Fprintln(cc.Out, version)
			return nil
		})
}

package main

import (
	"context"

	"github.com/scott-cotton/cli"

	"github.com/nazahex/rigra/cmd/rigra/commands"
)

func main() {
	cli.MainContext(context.Background(), commands.Root())
}

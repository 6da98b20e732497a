// Package main is the entry point for the realign CLI.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/albertocavalcante/go-realign/cmd/realign/commands"
	"github.com/albertocavalcante/go-realign/internal/build"
)

func main() {
	cli := commands.New(os.Stdout, os.Stderr)
	// fang prints the error report itself.
	if err := fang.Execute(
		context.Background(),
		cli.Root(),
		fang.WithVersion(build.String()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

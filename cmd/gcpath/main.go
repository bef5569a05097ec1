// Package main implements the gcpath CLI.
// It builds code paths for JavaScript and TypeScript sources and reports
// unreachable code.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/l3aro/go-codepath/cmd/gcpath/commands"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.RootCmd.SetVersionTemplate("gcpath version {{.Version}}\n")
	commands.RootCmd.Version = version

	if err := commands.RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

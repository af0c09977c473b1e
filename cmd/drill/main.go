// Package main provides a CLI for running Lua consistency drills.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandtable-sim/sandtable/internal/platform/config"

	drillcmd "github.com/sandtable-sim/sandtable/internal/cmd/drill"
)

func main() {
	cfg, err := drillcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := drillcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}

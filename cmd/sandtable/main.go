// Package main provides the sandtable CLI for generating, validating,
// exporting, and archiving scenarios.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandtable-sim/sandtable/internal/platform/config"

	sandtablecmd "github.com/sandtable-sim/sandtable/internal/cmd/sandtable"
)

func main() {
	cfg, err := sandtablecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sandtablecmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/kdeps/keydrop/cmd"
	"github.com/kdeps/keydrop/pkg/environment"
	"github.com/kdeps/keydrop/pkg/logging"
)

func main() {
	fs := afero.NewOsFs()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewDefault()

	opts := environment.LoadOptions{}
	if wd, err := os.Getwd(); err == nil {
		opts.Dir = wd
	} else {
		logger.Warn("Unable to determine working directory", "error", err)
	}

	rootCmd := cmd.NewRootCommand(fs, ctx, opts, logger)
	if err := rootCmd.Execute(); err != nil {
		stop()
		os.Exit(1)
	}
}

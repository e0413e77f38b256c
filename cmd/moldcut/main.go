// MoldCut computes fabric and trim requirements for garment production
// orders from imported pattern molds, product BOMs and stock levels.
//
// Build:
//   go build -o moldcut ./cmd/moldcut
//
// Usage:
//   moldcut import -name "Basic Tee" tee.mld
//   moldcut materials catalog.xlsx
//   moldcut report -orders orders.json -format pdf -out week42.pdf

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/piwi3910/MoldCut/internal/cli"
	"github.com/piwi3910/MoldCut/internal/project"
)

func main() {
	var (
		configPath = flag.String("config", project.DefaultConfigPath(), "Path to config JSON file")
		verbose    = flag.Bool("verbose", false, "Enable development logging")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: moldcut [-config path] [-verbose] <command> [flags]")
		fmt.Fprintln(os.Stderr, "Run 'moldcut help' for the list of commands.")
	}
	flag.Parse()

	cfg, err := project.LoadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(*verbose, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	app := cli.New(cfg, *configPath)
	app.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, flag.Args()); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			logger.Error("command failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		logger.Sync()
		os.Exit(1)
	}
}

// newLogger builds a development logger for -verbose and otherwise a
// production logger at the configured level.
func newLogger(verbose bool, level string) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

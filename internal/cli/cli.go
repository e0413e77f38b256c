// Package cli implements the moldcut subcommands: importing molds and
// material catalogs into the catalog database, maintaining stock and
// consumption caches, and producing requirement reports and labels.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/piwi3910/MoldCut/internal/model"
	"github.com/piwi3910/MoldCut/internal/project"
	"github.com/piwi3910/MoldCut/internal/store"
	"go.uber.org/zap"
)

// maxRecentMolds bounds the recent mold list kept in the app config.
const maxRecentMolds = 10

// ErrUsage is returned for unknown subcommands or missing arguments.
var ErrUsage = errors.New("usage error")

// App holds what every subcommand needs.
type App struct {
	Config     model.AppConfig
	ConfigPath string // empty disables config writes
	Logger     *zap.Logger
	Out        io.Writer
}

// New returns an App with a no-op logger writing to stdout.
func New(cfg model.AppConfig, configPath string) *App {
	return &App{
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     zap.NewNop(),
		Out:        os.Stdout,
	}
}

type command struct {
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"import":      {"import a .mld, JSON or DXF pattern as a mold", (*App).runImport},
	"materials":   {"import a material catalog from CSV or Excel", (*App).runMaterials},
	"stock":       {"add stock levels from a JSON inventory file", (*App).runStock},
	"consumption": {"rebuild cached fabric consumption of products", (*App).runConsumption},
	"products":    {"list products with their unit material cost", (*App).runProducts},
	"report":      {"aggregate orders into a purchase report", (*App).runReport},
	"compare":     {"compare fabric length of a mold across roll widths", (*App).runCompare},
	"labels":      {"print QR cut labels for a mold", (*App).runLabels},
	"backup":      {"write config, stock and catalog to one JSON file", (*App).runBackup},
	"restore":     {"load a backup file into the catalog database", (*App).runRestore},
}

// Run dispatches args[0] to its subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.printHelp()
		if len(args) == 0 {
			return ErrUsage
		}
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		a.printHelp()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return cmd.run(a, ctx, args[1:])
}

func (a *App) printHelp() {
	fmt.Fprintln(a.Out, "Usage: moldcut [-config path] [-verbose] <command> [flags]")
	fmt.Fprintln(a.Out)
	fmt.Fprintln(a.Out, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.Out, "  %-12s %s\n", name, commands[name].summary)
	}
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Out)
	return fs
}

// openStore opens the catalog database at path, or the configured one.
func (a *App) openStore(path string) (*store.Store, error) {
	if path == "" {
		path = a.Config.DatabasePath
	}
	if path == "" {
		path = project.DefaultDatabasePath()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return store.Open(path, store.WithLogger(a.Logger))
}

// outputPath resolves an output file name against the configured export
// directory when no explicit path was given.
func (a *App) outputPath(explicit, fallback string) string {
	if explicit != "" {
		return explicit
	}
	if a.Config.ExportDir != "" {
		return filepath.Join(a.Config.ExportDir, fallback)
	}
	return fallback
}

func (a *App) saveConfig() {
	if a.ConfigPath == "" {
		return
	}
	if err := project.SaveAppConfig(a.ConfigPath, a.Config); err != nil {
		a.Logger.Warn("failed to save config", zap.String("path", a.ConfigPath), zap.Error(err))
	}
}

func (a *App) printMessages(errs, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(a.Out, "warning: %s\n", w)
	}
	for _, e := range errs {
		fmt.Fprintf(a.Out, "error: %s\n", e)
	}
}

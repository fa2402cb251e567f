// Command roly builds, inspects, merges and reads dataset metadata files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/soltixdb/roly/internal/catalog"
	"github.com/soltixdb/roly/internal/config"
	"github.com/soltixdb/roly/internal/events"
	"github.com/soltixdb/roly/internal/logging"
	"github.com/soltixdb/roly/internal/source"
)

var Version = "dev" // Injected via ldflags during build

const usage = `Usage: roly <command> [flags]

Commands:
  build    analyze data files listed in a manifest and write a .roly file
  inspect  print the layout of a .roly file
  read     print the values of a column range
  merge    union .roly files into one
  bench    measure column read latency
  version  print the version
`

var errUsage = errors.New("invalid usage")

// env holds what every command shares
type env struct {
	stdout  io.Writer
	logger  *logging.Logger
	sources *source.Router
	cfg     *config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "roly: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("roly", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "Path to configuration file for byte sources")
	verbose := global.Bool("v", false, "Log debug messages")
	global.Usage = func() {
		fmt.Fprint(stderr, usage)
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return errUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return errUsage
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	sources, err := cfg.SourceRouter()
	if err != nil {
		return err
	}
	e := &env{
		stdout:  stdout,
		logger:  logging.NewWithWriter(zerolog.ConsoleWriter{Out: stderr, NoColor: true}, level),
		sources: sources,
		cfg:     cfg,
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	commands := map[string]func(context.Context, *env, *flag.FlagSet, []string) error{
		"build":   runBuild,
		"inspect": runInspect,
		"read":    runRead,
		"merge":   runMerge,
		"bench":   runBench,
	}
	if cmd == "version" {
		fmt.Fprintln(stdout, Version)
		return nil
	}
	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		global.Usage()
		return errUsage
	}

	fs := flag.NewFlagSet("roly "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fn(ctx, e, fs, rest)
}

// publish announces that the dataset stored at path changed, so catalog
// services sharing the configured event bus drop their cached copy
func (e *env) publish(ctx context.Context, path string) error {
	bus, err := events.New(e.cfg.Events, e.logger)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	name := strings.TrimSuffix(filepath.Base(path), catalog.Ext)
	if err := bus.Publish(ctx, events.DatasetUpdated, name); err != nil {
		return err
	}
	e.logger.Info("Published catalog event", "dataset", name, "type", e.cfg.Events.Type)
	return nil
}

// parse parses args and requires exactly nargs positional arguments, or
// at least one when nargs is negative
func parse(fs *flag.FlagSet, args []string, nargs int) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if (nargs >= 0 && fs.NArg() != nargs) || (nargs < 0 && fs.NArg() == 0) {
		fmt.Fprintf(fs.Output(), "%s: wrong number of arguments\n", fs.Name())
		fs.PrintDefaults()
		return errUsage
	}
	return nil
}

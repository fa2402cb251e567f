package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/soltixdb/roly/internal/analyze"
	"github.com/soltixdb/roly/internal/codec"
)

func runBuild(ctx context.Context, e *env, fs *flag.FlagSet, args []string) error {
	manifestPath := fs.String("manifest", "", "Path to the JSON manifest (required)")
	out := fs.String("out", "", "Output .roly path (required)")
	publish := fs.Bool("publish", false, "Announce the change on the configured event bus")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if *manifestPath == "" || *out == "" {
		fmt.Fprintln(fs.Output(), "-manifest and -out are required")
		return errUsage
	}

	m, err := analyze.LoadManifest(*manifestPath)
	if err != nil {
		return err
	}
	ds, err := analyze.NewBuilder(e.sources).BuildDataset(ctx, m)
	if err != nil {
		return err
	}
	if err := codec.WriteFile(*out, ds); err != nil {
		return err
	}

	e.logger.Info("Dataset written", "path", *out, "files", ds.NumFiles(), "entries", ds.NumEntries())
	if *publish {
		if err := e.publish(ctx, *out); err != nil {
			return err
		}
	}
	fmt.Fprintf(e.stdout, "wrote %s: %d columns, %d files, %d entries\n", *out, ds.NumColumns(), ds.NumFiles(), ds.NumEntries())
	return nil
}

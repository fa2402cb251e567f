package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/soltixdb/roly/internal/codec"
	"github.com/soltixdb/roly/internal/layout"
)

func runMerge(ctx context.Context, e *env, fs *flag.FlagSet, args []string) error {
	out := fs.String("out", "", "Output .roly path (required)")
	publish := fs.Bool("publish", false, "Announce the change on the configured event bus")
	if err := parse(fs, args, -1); err != nil {
		return err
	}
	if *out == "" {
		fmt.Fprintln(fs.Output(), "-out is required")
		return errUsage
	}

	datasets := make([]*layout.Dataset, fs.NArg())
	for i, location := range fs.Args() {
		ds, err := loadDataset(ctx, e, location)
		if err != nil {
			return err
		}
		datasets[i] = ds
	}
	merged, err := layout.Merge(datasets...)
	if err != nil {
		return err
	}
	if err := codec.WriteFile(*out, merged); err != nil {
		return err
	}

	if *publish {
		if err := e.publish(ctx, *out); err != nil {
			return err
		}
	}
	fmt.Fprintf(e.stdout, "wrote %s: %d columns, %d files, %d entries\n", *out, merged.NumColumns(), merged.NumFiles(), merged.NumEntries())
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/soltixdb/roly/internal/codec"
	"github.com/soltixdb/roly/internal/layout"
	"github.com/soltixdb/roly/internal/source"
)

// loadDataset reads a .roly file from any enabled source
func loadDataset(ctx context.Context, e *env, location string) (*layout.Dataset, error) {
	data, err := source.ReadAll(ctx, e.sources, location)
	if err != nil {
		return nil, err
	}
	ds, err := codec.DecodeDataset(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return ds, nil
}

func runInspect(ctx context.Context, e *env, fs *flag.FlagSet, args []string) error {
	baskets := fs.Bool("baskets", false, "Print basket counts per file and column")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	ds, err := loadDataset(ctx, e, fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "name:      %s\n", ds.Name())
	fmt.Fprintf(e.stdout, "treepath:  %s\n", ds.TreePath())
	if ds.LocationPrefix() != "" {
		fmt.Fprintf(e.stdout, "prefix:    %s\n", ds.LocationPrefix())
	}
	fmt.Fprintf(e.stdout, "entries:   %d\n\n", ds.NumEntries())

	columns, err := ds.Columns()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tINTERPRETATION\tTITLE")
	for i, name := range ds.ColNames() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, columns[i].Interpretation.Identifier(), columns[i].Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(e.stdout)

	files, err := ds.Files()
	if err != nil {
		return err
	}
	tw = tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tUUID\tENTRIES\tBASKETS")
	for i, f := range files {
		start, stop := ds.FileRange(i)
		counts := "-"
		if *baskets {
			if counts, err = basketCounts(f); err != nil {
				return err
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t[%d, %d)\t%s\n", f.Location(), f.UUID(), start, stop, counts)
	}
	return tw.Flush()
}

func basketCounts(f *layout.File) (string, error) {
	branches, err := f.Branches()
	if err != nil {
		return "", err
	}
	counts := make([]string, len(branches))
	for i, br := range branches {
		counts[i] = strconv.Itoa(br.NumBaskets())
	}
	return strings.Join(counts, ","), nil
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strconv"

	"github.com/soltixdb/roly/internal/deliver"
	"github.com/soltixdb/roly/internal/utils"
)

// entryFlag is an optional signed entry index
type entryFlag struct {
	value int64
	set   bool
}

func (f *entryFlag) String() string {
	if !f.set {
		return ""
	}
	return strconv.FormatInt(f.value, 10)
}

func (f *entryFlag) Set(s string) error {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	f.value, f.set = v, true
	return nil
}

func (e *env) engine(concurrency int) *deliver.Engine {
	opts := deliver.Options{
		Concurrency:     e.cfg.Delivery.Concurrency,
		VerifyChecksums: e.cfg.Delivery.VerifyChecksums,
	}
	if concurrency > 0 {
		opts.Concurrency = concurrency
	}
	return deliver.NewEngine(e.sources, nil, e.logger, opts)
}

func runRead(ctx context.Context, e *env, fs *flag.FlagSet, args []string) error {
	var start, stop entryFlag
	column := fs.String("column", "", "Column to read (required)")
	fs.Var(&start, "start", "First entry; negative counts from the end (default 0)")
	fs.Var(&stop, "stop", "Entry after the last; negative counts from the end (default all)")
	all := fs.Bool("all", false, fmt.Sprintf("Print every value instead of the first %d", utils.DefaultPreviewEntries))
	summary := fs.Bool("summary", false, "Print count, min, max and mean instead of values")
	concurrency := fs.Int("concurrency", 0, "Baskets fetched at once")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	if *column == "" {
		fmt.Fprintln(fs.Output(), "-column is required")
		return errUsage
	}

	ds, err := loadDataset(ctx, e, fs.Arg(0))
	if err != nil {
		return err
	}
	if !stop.set {
		stop.value = int64(ds.NumEntries())
	}
	plan, err := deliver.Resolve(ds, *column, start.value, stop.value)
	if err != nil {
		return err
	}
	total := plan.NumEntries()
	if !*all && !*summary && total > utils.DefaultPreviewEntries {
		plan, err = deliver.Resolve(ds, *column, int64(plan.Start), int64(plan.Start)+utils.DefaultPreviewEntries)
		if err != nil {
			return err
		}
	}

	col, err := ds.Column(plan.ColumnIndex)
	if err != nil {
		return err
	}
	values, err := e.engine(*concurrency).Execute(ctx, plan, col)
	if err != nil {
		return err
	}

	if *summary {
		s, ok := utils.Summarize(values)
		if !ok {
			return fmt.Errorf("column %q is not numeric", *column)
		}
		fmt.Fprintf(e.stdout, "entries [%d, %d): count=%d min=%g max=%g mean=%g\n",
			plan.Start, plan.Stop, s.Count, s.Min, s.Max, s.Mean)
		return nil
	}

	out, err := json.MarshalIndent(utils.JSONValues(values), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "entries [%d, %d) of %d selected\n%s\n", plan.Start, plan.Stop, total, out)
	return nil
}

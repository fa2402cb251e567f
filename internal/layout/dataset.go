package layout

import (
	"fmt"
	"slices"

	"github.com/soltixdb/roly/internal/lazy"
)

// DatasetSpec describes a dataset built from materialized parts
type DatasetSpec struct {
	Name           string
	TreePath       string
	ColNames       []string
	Columns        []Column
	Files          []*File
	GlobalOffsets  []uint64
	LocationPrefix string
}

// LazyDatasetSpec describes a dataset whose columns and files are decoded
// on first access
type LazyDatasetSpec struct {
	Name           string
	TreePath       string
	ColNames       []string
	Columns        *lazy.List[Column]
	Files          *lazy.List[*File]
	GlobalOffsets  []uint64
	LocationPrefix string
}

// Dataset is a logical table spread across files. Entry i of the dataset
// lives in file k where GlobalOffsets[k] <= i < GlobalOffsets[k+1].
type Dataset struct {
	name           string
	treePath       string
	locationPrefix string
	colNames       []string
	colIndex       map[string]int
	columns        *lazy.List[Column]
	files          *lazy.List[*File]
	globalOffsets  []uint64
}

// NewDataset validates every part of spec, including each file's branches,
// and builds a Dataset.
func NewDataset(spec DatasetSpec) (*Dataset, error) {
	if len(spec.ColNames) != len(spec.Columns) {
		return nil, layoutErrorf("dataset", "len mismatch: %d colnames, %d columns", len(spec.ColNames), len(spec.Columns))
	}
	for i, c := range spec.Columns {
		if c.Interpretation == nil {
			return nil, layoutErrorf("dataset", "column %q has no interpretation", spec.ColNames[i])
		}
	}
	for i, f := range spec.Files {
		if f == nil {
			return nil, layoutErrorf("dataset", "file %d is nil", i)
		}
	}

	d, err := newDataset(spec.Name, spec.TreePath, spec.LocationPrefix, spec.ColNames,
		lazy.FromSlice(slices.Clone(spec.Columns)), lazy.FromSlice(slices.Clone(spec.Files)), spec.GlobalOffsets)
	if err != nil {
		return nil, err
	}

	for i, f := range spec.Files {
		if err := d.checkFile(i, f); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// NewLazyDataset validates the eager parts of spec. Files and columns are
// checked as they are loaded.
func NewLazyDataset(spec LazyDatasetSpec) (*Dataset, error) {
	if spec.Columns == nil || spec.Files == nil {
		return nil, layoutErrorf("dataset", "columns and files are required")
	}
	if len(spec.ColNames) != spec.Columns.Len() {
		return nil, layoutErrorf("dataset", "len mismatch: %d colnames, %d columns", len(spec.ColNames), spec.Columns.Len())
	}
	return newDataset(spec.Name, spec.TreePath, spec.LocationPrefix, spec.ColNames, spec.Columns, spec.Files, spec.GlobalOffsets)
}

func newDataset(name, treePath, prefix string, colNames []string, columns *lazy.List[Column], files *lazy.List[*File], globalOffsets []uint64) (*Dataset, error) {
	index := make(map[string]int, len(colNames))
	for i, c := range colNames {
		if _, dup := index[c]; dup {
			return nil, layoutErrorf("dataset", "duplicate column name %q", c)
		}
		index[c] = i
	}

	if len(globalOffsets) != files.Len()+1 {
		return nil, layoutErrorf("dataset", "len mismatch: %d global_offsets, %d files", len(globalOffsets), files.Len())
	}
	if globalOffsets[0] != 0 {
		return nil, layoutErrorf("dataset", "global_offsets must start with 0")
	}
	for i := 1; i < len(globalOffsets); i++ {
		if globalOffsets[i] < globalOffsets[i-1] {
			return nil, layoutErrorf("dataset", "global_offsets must be non-decreasing (index %d)", i)
		}
	}

	return &Dataset{
		name:           name,
		treePath:       treePath,
		locationPrefix: prefix,
		colNames:       slices.Clone(colNames),
		colIndex:       index,
		columns:        columns,
		files:          files,
		globalOffsets:  slices.Clone(globalOffsets),
	}, nil
}

// checkFile checks that file i has one branch per column and as many
// entries as its global_offsets span
func (d *Dataset) checkFile(i int, f *File) error {
	if f.NumBranches() != len(d.colNames) {
		return layoutErrorf("dataset", "file %d (%s) has %d branches, dataset has %d columns",
			i, f.Location(), f.NumBranches(), len(d.colNames))
	}
	if len(d.colNames) == 0 {
		return nil
	}
	n, err := f.NumEntries()
	if err != nil {
		return fmt.Errorf("file %d: %w", i, err)
	}
	if want := d.globalOffsets[i+1] - d.globalOffsets[i]; n != want {
		return layoutErrorf("dataset", "file %d (%s) has %d entries, global_offsets allows %d", i, f.Location(), n, want)
	}
	return nil
}

func (d *Dataset) Name() string           { return d.name }
func (d *Dataset) TreePath() string       { return d.treePath }
func (d *Dataset) LocationPrefix() string { return d.locationPrefix }

// ColNames returns a copy of the column names in column order
func (d *Dataset) ColNames() []string { return slices.Clone(d.colNames) }

// NumColumns returns the number of columns
func (d *Dataset) NumColumns() int { return len(d.colNames) }

// ColumnIndex returns the position of the named column
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.colIndex[name]
	return i, ok
}

// Column returns column i
func (d *Dataset) Column(i int) (Column, error) {
	c, err := d.columns.Get(i)
	if err != nil {
		return Column{}, fmt.Errorf("column %d: %w", i, err)
	}
	return c, nil
}

// Columns materializes every column
func (d *Dataset) Columns() ([]Column, error) {
	return d.columns.All()
}

// NumFiles returns the number of files
func (d *Dataset) NumFiles() int { return d.files.Len() }

// File returns file i, checking its branch and entry counts against the
// dataset
func (d *Dataset) File(i int) (*File, error) {
	f, err := d.files.Get(i)
	if err != nil {
		return nil, fmt.Errorf("file %d: %w", i, err)
	}
	if err := d.checkFile(i, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Files materializes every file
func (d *Dataset) Files() ([]*File, error) {
	out := make([]*File, d.NumFiles())
	for i := range out {
		f, err := d.File(i)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// GlobalOffsets returns the file to entry index. It must not be modified.
func (d *Dataset) GlobalOffsets() []uint64 { return d.globalOffsets }

// NumEntries returns the total number of entries
func (d *Dataset) NumEntries() uint64 { return d.globalOffsets[len(d.globalOffsets)-1] }

// FileRange returns the global entry range of file i
func (d *Dataset) FileRange(i int) (start, stop uint64) {
	return d.globalOffsets[i], d.globalOffsets[i+1]
}

// FullLocation returns the location of f with the dataset prefix applied
func (d *Dataset) FullLocation(f *File) string {
	return d.locationPrefix + f.Location()
}

// Equal reports deep structural equality
func (d *Dataset) Equal(o *Dataset) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.name != o.name || d.treePath != o.treePath || d.locationPrefix != o.locationPrefix ||
		!slices.Equal(d.colNames, o.colNames) || !slices.Equal(d.globalOffsets, o.globalOffsets) ||
		d.NumFiles() != o.NumFiles() {
		return false
	}
	for i := range d.colNames {
		a, errA := d.Column(i)
		b, errB := o.Column(i)
		if errA != nil || errB != nil || !a.Equal(b) {
			return false
		}
	}
	for i := 0; i < d.NumFiles(); i++ {
		a, errA := d.File(i)
		b, errB := o.File(i)
		if errA != nil || errB != nil || !a.Equal(b) {
			return false
		}
	}
	return true
}

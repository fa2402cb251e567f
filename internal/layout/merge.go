package layout

import (
	"github.com/soltixdb/roly/internal/interp"
)

// Add returns the union of d and other. Columns are matched by name;
// files lacking a column get an empty branch for it. Neither input is
// modified.
func (d *Dataset) Add(other *Dataset) (*Dataset, error) {
	if d.name != other.name {
		return nil, &IncompatibleDatasetError{Field: "name", Left: d.name, Right: other.name}
	}
	if d.treePath != other.treePath {
		return nil, &IncompatibleDatasetError{Field: "treepath", Left: d.treePath, Right: other.treePath}
	}
	if d.locationPrefix != other.locationPrefix {
		return nil, &IncompatibleDatasetError{Field: "location_prefix", Left: d.locationPrefix, Right: other.locationPrefix}
	}

	columns, err := d.Columns()
	if err != nil {
		return nil, err
	}
	otherColumns, err := other.Columns()
	if err != nil {
		return nil, err
	}

	colNames := d.ColNames()
	for j, name := range other.colNames {
		if i, ok := d.colIndex[name]; ok {
			left, right := columns[i].Interpretation, otherColumns[j].Interpretation
			if !interp.Equal(left, right) {
				return nil, &IncompatibleDatasetError{Field: "column " + name, Left: left.Identifier(), Right: right.Identifier()}
			}
			continue
		}
		colNames = append(colNames, name)
		columns = append(columns, otherColumns[j])
	}

	files := make([]*File, 0, d.NumFiles()+other.NumFiles())
	for i := 0; i < d.NumFiles(); i++ {
		f, err := d.File(i)
		if err != nil {
			return nil, err
		}
		branches, err := f.Branches()
		if err != nil {
			return nil, err
		}
		for len(branches) < len(colNames) {
			branches = append(branches, EmptyBranch())
		}
		padded, err := NewFile(f.Location(), f.UUID(), branches)
		if err != nil {
			return nil, err
		}
		files = append(files, padded)
	}
	for i := 0; i < other.NumFiles(); i++ {
		f, err := other.File(i)
		if err != nil {
			return nil, err
		}
		own, err := f.Branches()
		if err != nil {
			return nil, err
		}
		branches := make([]*Branch, len(colNames))
		for k, name := range colNames {
			if j, ok := other.colIndex[name]; ok {
				branches[k] = own[j]
			} else {
				branches[k] = EmptyBranch()
			}
		}
		padded, err := NewFile(f.Location(), f.UUID(), branches)
		if err != nil {
			return nil, err
		}
		files = append(files, padded)
	}

	// the boundary shared by both inputs appears once
	shift := d.NumEntries()
	offsets := make([]uint64, 0, len(d.globalOffsets)+len(other.globalOffsets)-1)
	offsets = append(offsets, d.globalOffsets...)
	for _, o := range other.globalOffsets[1:] {
		offsets = append(offsets, o+shift)
	}

	return NewDataset(DatasetSpec{
		Name:           d.name,
		TreePath:       d.treePath,
		ColNames:       colNames,
		Columns:        columns,
		Files:          files,
		GlobalOffsets:  offsets,
		LocationPrefix: d.locationPrefix,
	})
}

// Merge unions datasets left to right
func Merge(datasets ...*Dataset) (*Dataset, error) {
	if len(datasets) == 0 {
		return nil, layoutErrorf("dataset", "nothing to merge")
	}
	out := datasets[0]
	for _, d := range datasets[1:] {
		var err error
		if out, err = out.Add(d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

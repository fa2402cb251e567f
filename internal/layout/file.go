package layout

import (
	"fmt"

	"github.com/soltixdb/roly/internal/lazy"
)

// File is one physical file of a dataset, with one branch per column in
// dataset column order.
type File struct {
	location string
	uuid     string
	branches *lazy.List[*Branch]
}

// NewFile creates a file from materialized branches
func NewFile(location, uuid string, branches []*Branch) (*File, error) {
	for i, b := range branches {
		if b == nil {
			return nil, layoutErrorf("file", "branch %d of %q is nil", i, location)
		}
	}
	return &File{location: location, uuid: uuid, branches: lazy.FromSlice(branches)}, nil
}

// NewLazyFile creates a file whose branches are decoded on first access
func NewLazyFile(location, uuid string, branches *lazy.List[*Branch]) *File {
	return &File{location: location, uuid: uuid, branches: branches}
}

// Location returns the file location relative to the dataset prefix
func (f *File) Location() string { return f.location }

// UUID returns the file identifier, possibly empty
func (f *File) UUID() string { return f.uuid }

// NumBranches returns the number of branches
func (f *File) NumBranches() int { return f.branches.Len() }

// Branch returns branch i
func (f *File) Branch(i int) (*Branch, error) {
	b, err := f.branches.Get(i)
	if err != nil {
		return nil, fmt.Errorf("file %q branch %d: %w", f.location, i, err)
	}
	return b, nil
}

// Branches materializes every branch
func (f *File) Branches() ([]*Branch, error) {
	out := make([]*Branch, f.NumBranches())
	for i := range out {
		b, err := f.Branch(i)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// NumEntries returns the largest entry count among the branches. Padding
// branches contribute zero.
func (f *File) NumEntries() (uint64, error) {
	var n uint64
	for i := 0; i < f.NumBranches(); i++ {
		b, err := f.Branch(i)
		if err != nil {
			return 0, err
		}
		n = max(n, b.NumEntries())
	}
	return n, nil
}

// Equal reports deep equality
func (f *File) Equal(o *File) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.location != o.location || f.uuid != o.uuid || f.NumBranches() != o.NumBranches() {
		return false
	}
	for i := 0; i < f.NumBranches(); i++ {
		a, errA := f.Branch(i)
		b, errB := o.Branch(i)
		if errA != nil || errB != nil || !a.Equal(b) {
			return false
		}
	}
	return true
}

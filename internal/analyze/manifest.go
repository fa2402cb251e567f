package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/soltixdb/roly/internal/layout"
	"github.com/soltixdb/roly/internal/source"
)

// Manifest describes the data files of one dataset as an analyzer found
// them
type Manifest struct {
	Name           string         `json:"name"`
	TreePath       string         `json:"treepath"`
	LocationPrefix string         `json:"location_prefix,omitempty"`
	Files          []ManifestFile `json:"files"`
}

// ManifestFile is one data file with a branch per column
type ManifestFile struct {
	Location string           `json:"location"`
	UUID     string           `json:"uuid,omitempty"`
	Branches []ManifestBranch `json:"branches"`
}

// ManifestBranch is one branch of a data file
type ManifestBranch struct {
	Column         string             `json:"column"`
	Title          string             `json:"title,omitempty"`
	Interpretation InterpretationSpec `json:"interpretation"`
	LocalOffsets   []uint64           `json:"local_offsets"`
	Keys           []BasketKey        `json:"keys"`
}

// ReadManifest decodes a manifest from r
func ReadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// WriteManifest encodes m to w as indented JSON
func WriteManifest(w io.Writer, m *Manifest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// LoadManifest reads a manifest file
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadManifest(f)
}

// Builder turns manifests into datasets, reading chunk headers through
// opener
type Builder struct {
	opener source.Opener
	newID  func() string
}

// NewBuilder creates a builder. Files without a uuid get a random one.
func NewBuilder(opener source.Opener) *Builder {
	return &Builder{opener: opener, newID: uuid.NewString}
}

// BuildDataset frames every branch of m and returns one dataset. All
// files must carry the same columns in the same order.
func (b *Builder) BuildDataset(ctx context.Context, m *Manifest) (*layout.Dataset, error) {
	if len(m.Files) == 0 {
		return nil, fmt.Errorf("manifest %q has no files", m.Name)
	}

	first := m.Files[0]
	colNames := make([]string, len(first.Branches))
	columns := make([]layout.Column, len(first.Branches))
	for i, mb := range first.Branches {
		desc, err := mb.Interpretation.Build()
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", mb.Column, err)
		}
		col, err := layout.NewColumn(desc, mb.Title)
		if err != nil {
			return nil, err
		}
		colNames[i] = mb.Column
		columns[i] = col
	}

	files := make([]*layout.File, len(m.Files))
	offsets := make([]uint64, 1, len(m.Files)+1)
	for i, mf := range m.Files {
		f, err := b.buildFile(ctx, m.LocationPrefix, mf, colNames)
		if err != nil {
			return nil, err
		}
		n, err := f.NumEntries()
		if err != nil {
			return nil, err
		}
		files[i] = f
		offsets = append(offsets, offsets[i]+n)
	}

	return layout.NewDataset(layout.DatasetSpec{
		Name:           m.Name,
		TreePath:       m.TreePath,
		ColNames:       colNames,
		Columns:        columns,
		Files:          files,
		GlobalOffsets:  offsets,
		LocationPrefix: m.LocationPrefix,
	})
}

func (b *Builder) buildFile(ctx context.Context, prefix string, mf ManifestFile, colNames []string) (*layout.File, error) {
	if len(mf.Branches) != len(colNames) {
		return nil, fmt.Errorf("%s: %d branches, want %d", mf.Location, len(mf.Branches), len(colNames))
	}

	location := prefix + mf.Location
	r, err := b.opener.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", location, err)
	}
	defer r.Close()

	branches := make([]*layout.Branch, len(mf.Branches))
	for i, mb := range mf.Branches {
		if mb.Column != colNames[i] {
			return nil, fmt.Errorf("%s: branch %d is %q, want %q", mf.Location, i, mb.Column, colNames[i])
		}
		branch, err := BranchFromKeys(ctx, r, location, mb.LocalOffsets, mb.Keys)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", mb.Column, err)
		}
		branches[i] = branch
	}

	id := mf.UUID
	if id == "" {
		id = b.newID()
	}
	return layout.NewFile(mf.Location, id, branches)
}

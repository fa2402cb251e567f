// Package codec reads and writes dataset metadata as flatbuffers. A
// metadata file is the four byte magic "roly" followed by a Dataset
// buffer. Decoded datasets view the buffer directly and copy arrays out
// of it only when they are first used.
package codec

import (
	"bytes"
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/soltixdb/roly/internal/fbs/layoutfb"
	"github.com/soltixdb/roly/internal/layout"
	"github.com/soltixdb/roly/internal/lazy"
)

// Magic prefixes every metadata file
const Magic = "roly"

// ErrBadMagic is returned when data does not start with Magic
var ErrBadMagic = errors.New("codec: missing roly magic")

const initialBufferSize = 1024

// EncodeDataset serializes d, prefixed with Magic
func EncodeDataset(d *layout.Dataset) ([]byte, error) {
	b := flatbuffers.NewBuilder(initialBufferSize)
	root, err := buildDataset(b, d)
	if err != nil {
		return nil, err
	}
	b.Finish(root)
	out := make([]byte, 0, len(Magic)+len(b.FinishedBytes()))
	out = append(out, Magic...)
	return append(out, b.FinishedBytes()...), nil
}

// DecodeDataset opens a dataset over data without copying it. data must
// not be modified or unmapped while the dataset is in use.
func DecodeDataset(data []byte) (*layout.Dataset, error) {
	if !bytes.HasPrefix(data, []byte(Magic)) {
		return nil, ErrBadMagic
	}
	buf := data[len(Magic):]
	if len(buf) < flatbuffers.SizeUOffsetT {
		return nil, &layout.LayoutError{Entity: "dataset", Reason: "truncated buffer"}
	}
	return readDataset(buf)
}

func readDataset(buf []byte) (d *layout.Dataset, err error) {
	defer guard(&err, "dataset")

	fb := layoutfb.GetRootAsDataset(buf, 0)

	colNames := make([]string, fb.ColnamesLength())
	for i := range colNames {
		colNames[i] = string(fb.Colnames(i))
	}
	offsets := make([]uint64, fb.GlobalOffsetsLength())
	for i := range offsets {
		offsets[i] = fb.GlobalOffsets(i)
	}

	columns := lazy.NewList(fb.ColumnsLength(), func(i int) (c layout.Column, err error) {
		defer guard(&err, "column")
		col := new(layoutfb.Column)
		if !fb.Columns(col, i) {
			return layout.Column{}, &layout.LayoutError{Entity: "column", Reason: "missing table"}
		}
		return readColumn(col)
	})
	files := lazy.NewList(fb.FilesLength(), func(i int) (f *layout.File, err error) {
		defer guard(&err, "file")
		file := new(layoutfb.File)
		if !fb.Files(file, i) {
			return nil, &layout.LayoutError{Entity: "file", Reason: "missing table"}
		}
		return readFile(file), nil
	})

	var prefix string
	if fb.HasLocationPrefix() {
		prefix = string(fb.LocationPrefix())
	}
	return layout.NewLazyDataset(layout.LazyDatasetSpec{
		Name:           string(fb.Name()),
		TreePath:       string(fb.Treepath()),
		ColNames:       colNames,
		Columns:        columns,
		Files:          files,
		GlobalOffsets:  offsets,
		LocationPrefix: prefix,
	})
}

func buildDataset(b *flatbuffers.Builder, d *layout.Dataset) (flatbuffers.UOffsetT, error) {
	columns, err := d.Columns()
	if err != nil {
		return 0, err
	}
	files, err := d.Files()
	if err != nil {
		return 0, err
	}

	columnOffsets := make([]flatbuffers.UOffsetT, len(columns))
	for i, c := range columns {
		if columnOffsets[i], err = buildColumn(b, c); err != nil {
			return 0, fmt.Errorf("column %q: %w", d.ColNames()[i], err)
		}
	}
	fileOffsets := make([]flatbuffers.UOffsetT, len(files))
	for i, f := range files {
		if fileOffsets[i], err = buildFile(b, f); err != nil {
			return 0, err
		}
	}

	name := b.CreateString(d.Name())
	treePath := b.CreateString(d.TreePath())
	colNames := stringVector(b, layoutfb.DatasetStartColnamesVector, d.ColNames())
	columnVec := offsetVector(b, layoutfb.DatasetStartColumnsVector, columnOffsets)
	fileVec := offsetVector(b, layoutfb.DatasetStartFilesVector, fileOffsets)
	globalOffsets := uint64Vector(b, layoutfb.DatasetStartGlobalOffsetsVector, d.GlobalOffsets())
	var prefix flatbuffers.UOffsetT
	if d.LocationPrefix() != "" {
		prefix = b.CreateString(d.LocationPrefix())
	}

	layoutfb.DatasetStart(b)
	layoutfb.DatasetAddName(b, name)
	layoutfb.DatasetAddTreepath(b, treePath)
	layoutfb.DatasetAddColnames(b, colNames)
	layoutfb.DatasetAddColumns(b, columnVec)
	layoutfb.DatasetAddFiles(b, fileVec)
	layoutfb.DatasetAddGlobalOffsets(b, globalOffsets)
	if prefix != 0 {
		layoutfb.DatasetAddLocationPrefix(b, prefix)
	}
	return layoutfb.DatasetEnd(b), nil
}

// guard turns a panic raised by an out of bounds read into a LayoutError
func guard(err *error, entity string) {
	if r := recover(); r != nil {
		*err = &layout.LayoutError{Entity: entity, Reason: fmt.Sprintf("malformed buffer: %v", r)}
	}
}

type vectorStart func(b *flatbuffers.Builder, n int) flatbuffers.UOffsetT

func uint64Vector(b *flatbuffers.Builder, start vectorStart, v []uint64) flatbuffers.UOffsetT {
	start(b, len(v))
	for i := len(v) - 1; i >= 0; i-- {
		b.PrependUint64(v[i])
	}
	return b.EndVector(len(v))
}

func uint32Vector(b *flatbuffers.Builder, start vectorStart, v []uint32) flatbuffers.UOffsetT {
	start(b, len(v))
	for i := len(v) - 1; i >= 0; i-- {
		b.PrependUint32(v[i])
	}
	return b.EndVector(len(v))
}

func offsetVector(b *flatbuffers.Builder, start vectorStart, v []flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	start(b, len(v))
	for i := len(v) - 1; i >= 0; i-- {
		b.PrependUOffsetT(v[i])
	}
	return b.EndVector(len(v))
}

func stringVector(b *flatbuffers.Builder, start vectorStart, v []string) flatbuffers.UOffsetT {
	offsets := make([]flatbuffers.UOffsetT, len(v))
	for i, s := range v {
		offsets[i] = b.CreateString(s)
	}
	return offsetVector(b, start, offsets)
}

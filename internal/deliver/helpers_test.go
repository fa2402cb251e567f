package deliver

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soltixdb/roly/internal/compression"
	"github.com/soltixdb/roly/internal/interp"
	"github.com/soltixdb/roly/internal/layout"
)

const testKeylen = 20

// basketContent is the uncompressed payload of one basket. offsets holds
// the start of each entry in data, or nil for fixed-width content.
type basketContent struct {
	data    []byte
	offsets []int32
	entries int
}

// bytes returns the basket as stored: data followed by the offset table
func (b basketContent) bytes() []byte {
	out := append([]byte(nil), b.data...)
	if b.offsets == nil {
		return out
	}
	out = binary.BigEndian.AppendUint32(out, uint32(len(b.offsets)))
	for _, o := range b.offsets {
		out = binary.BigEndian.AppendUint32(out, uint32(o+testKeylen))
	}
	return binary.BigEndian.AppendUint32(out, 0)
}

// dataFile accumulates the bytes of one data file
type dataFile struct {
	buf bytes.Buffer
}

// addBranch writes baskets, splitting compressed ones into chunks of at
// most chunkSize bytes, and returns their geometry
func (f *dataFile) addBranch(t *testing.T, codec compression.Algorithm, chunkSize int, baskets []basketContent) layout.BranchArrays {
	t.Helper()
	a := layout.BranchArrays{
		LocalOffsets:      []uint64{0},
		PageSeeks:         []uint64{},
		Compression:       codec,
		UncompressedBytes: []uint32{},
		BasketPageOffsets: []uint32{0},
	}
	if codec != compression.None {
		a.CompressedBytes = []uint32{}
	}
	headerSize := compression.ChunkHeaderSize
	if codec == compression.LZ4 {
		headerSize += compression.LZ4ChecksumSize
	}

	jagged := false
	for _, b := range baskets {
		jagged = jagged || b.offsets != nil
	}
	if jagged {
		a.BasketDataBorders = []uint32{}
		a.BasketKeylens = []uint32{}
	}

	for _, b := range baskets {
		content := b.bytes()
		f.buf.Write(bytes.Repeat([]byte{0xAA}, testKeylen))

		if codec == compression.None {
			a.PageSeeks = append(a.PageSeeks, uint64(f.buf.Len()))
			a.UncompressedBytes = append(a.UncompressedBytes, uint32(len(content)))
			f.buf.Write(content)
		} else {
			for lo := 0; lo < len(content); lo += chunkSize {
				part := content[lo:min(lo+chunkSize, len(content))]
				chunk, err := compression.FrameChunk(codec, part)
				if errors.Is(err, compression.ErrIncompressible) {
					// stored raw, as writers do when compression does not pay
					a.PageSeeks = append(a.PageSeeks, uint64(f.buf.Len()))
					a.CompressedBytes = append(a.CompressedBytes, uint32(len(part)))
					a.UncompressedBytes = append(a.UncompressedBytes, uint32(len(part)))
					f.buf.Write(part)
					continue
				}
				require.NoError(t, err)
				a.PageSeeks = append(a.PageSeeks, uint64(f.buf.Len()+headerSize))
				a.CompressedBytes = append(a.CompressedBytes, uint32(len(chunk)-headerSize))
				a.UncompressedBytes = append(a.UncompressedBytes, uint32(len(part)))
				f.buf.Write(chunk)
			}
		}

		a.LocalOffsets = append(a.LocalOffsets, a.LocalOffsets[len(a.LocalOffsets)-1]+uint64(b.entries))
		a.BasketPageOffsets = append(a.BasketPageOffsets, uint32(len(a.PageSeeks)))
		if jagged {
			border := uint32(0)
			if b.offsets != nil {
				border = uint32(len(b.data))
			}
			a.BasketDataBorders = append(a.BasketDataBorders, border)
			a.BasketKeylens = append(a.BasketKeylens, testKeylen)
		}
	}
	return a
}

func flatBasket(start, stop int) basketContent {
	b := basketContent{entries: stop - start}
	for i := start; i < stop; i++ {
		b.data = binary.BigEndian.AppendUint64(b.data, math.Float64bits(float64(i)))
	}
	return b
}

func jaggedBasket(start, stop int) basketContent {
	b := basketContent{entries: stop - start}
	for i := start; i < stop; i++ {
		b.offsets = append(b.offsets, int32(len(b.data)))
		for k := 0; k < i%4; k++ {
			b.data = binary.BigEndian.AppendUint32(b.data, uint32(i))
		}
	}
	return b
}

func label(i int) string {
	return fmt.Sprintf("e%d", i)
}

func stringBasket(start, stop int) basketContent {
	b := basketContent{entries: stop - start}
	for i := start; i < stop; i++ {
		b.offsets = append(b.offsets, int32(len(b.data)))
		s := label(i)
		b.data = append(b.data, byte(len(s)))
		b.data = append(b.data, s...)
	}
	return b
}

var testColumns = []string{"x", "hits", "label"}

func testColumnDescs() []layout.Column {
	return []layout.Column{
		{Interpretation: interp.NewFlat(interp.Primitive{DType: interp.Float64, BigEndian: true})},
		{Interpretation: &interp.Jagged{Content: interp.NewFlat(interp.Primitive{DType: interp.Int32, BigEndian: true})}},
		{Interpretation: &interp.String{SkipBytes: 1}},
	}
}

// writeDataset writes one data file per entry of files, each holding
// baskets with the given entry counts, and returns the dataset over them.
// Entry i of the dataset has x = i, i%4 hits equal to i and label "e<i>".
func writeDataset(t *testing.T, codec compression.Algorithm, chunkSize int, files ...[]int) *layout.Dataset {
	t.Helper()
	codecs := make([]compression.Algorithm, len(files))
	for i := range codecs {
		codecs[i] = codec
	}
	return writeMixedDataset(t, codecs, chunkSize, files...)
}

// writeMixedDataset is writeDataset with one codec per file
func writeMixedDataset(t *testing.T, codecs []compression.Algorithm, chunkSize int, files ...[]int) *layout.Dataset {
	t.Helper()
	dir := t.TempDir()
	offsets := []uint64{0}
	out := make([]*layout.File, len(files))
	global := 0
	for i, counts := range files {
		var flat, jagged, strs []basketContent
		for _, n := range counts {
			flat = append(flat, flatBasket(global, global+n))
			jagged = append(jagged, jaggedBasket(global, global+n))
			strs = append(strs, stringBasket(global, global+n))
			global += n
		}

		var df dataFile
		branches := make([]*layout.Branch, 0, len(testColumns))
		for _, baskets := range [][]basketContent{flat, jagged, strs} {
			b, err := layout.NewBranch(df.addBranch(t, codecs[i], chunkSize, baskets))
			require.NoError(t, err)
			branches = append(branches, b)
		}

		name := fmt.Sprintf("part-%d.root", i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), df.buf.Bytes(), 0o644))
		f, err := layout.NewFile(name, "", branches)
		require.NoError(t, err)
		out[i] = f
		offsets = append(offsets, uint64(global))
	}

	ds, err := layout.NewDataset(layout.DatasetSpec{
		Name:           "events",
		TreePath:       "Events",
		ColNames:       testColumns,
		Columns:        testColumnDescs(),
		Files:          out,
		GlobalOffsets:  offsets,
		LocationPrefix: dir + "/",
	})
	require.NoError(t, err)
	return ds
}

// replaceBranch returns ds with branch col of file fi rebuilt from arrays
// changed by mutate
func replaceBranch(t *testing.T, ds *layout.Dataset, fi, col int, mutate func(*layout.BranchArrays)) *layout.Dataset {
	t.Helper()
	files, err := ds.Files()
	require.NoError(t, err)
	branches, err := files[fi].Branches()
	require.NoError(t, err)

	arrays := branches[col].Arrays()
	mutate(&arrays)
	b, err := layout.NewBranch(arrays)
	require.NoError(t, err)
	branches = append([]*layout.Branch(nil), branches...)
	branches[col] = b

	f, err := layout.NewFile(files[fi].Location(), files[fi].UUID(), branches)
	require.NoError(t, err)
	files = append([]*layout.File(nil), files...)
	files[fi] = f

	columns, err := ds.Columns()
	require.NoError(t, err)
	out, err := layout.NewDataset(layout.DatasetSpec{
		Name:           ds.Name(),
		TreePath:       ds.TreePath(),
		ColNames:       ds.ColNames(),
		Columns:        columns,
		Files:          files,
		GlobalOffsets:  ds.GlobalOffsets(),
		LocationPrefix: ds.LocationPrefix(),
	})
	require.NoError(t, err)
	return out
}

// patchFile overwrites bytes of the data file of file fi at off
func patchFile(t *testing.T, ds *layout.Dataset, fi int, off uint64, patch []byte) {
	t.Helper()
	f, err := ds.File(fi)
	require.NoError(t, err)
	h, err := os.OpenFile(ds.FullLocation(f), os.O_RDWR, 0)
	require.NoError(t, err)
	defer h.Close()
	_, err = h.WriteAt(patch, int64(off))
	require.NoError(t, err)
}

func branchOf(t *testing.T, ds *layout.Dataset, fi, col int) *layout.Branch {
	t.Helper()
	f, err := ds.File(fi)
	require.NoError(t, err)
	b, err := f.Branch(col)
	require.NoError(t, err)
	return b
}

func requireX(t *testing.T, out any, start, stop int) {
	t.Helper()
	arr, ok := out.(*interp.Array)
	require.True(t, ok, "got %T", out)
	require.Equal(t, []int{stop - start}, arr.Shape)
	values := arr.Values.([]float64)
	for i := start; i < stop; i++ {
		require.Equal(t, float64(i), values[i-start], "entry %d", i)
	}
}

func requireHits(t *testing.T, out any, start, stop int) {
	t.Helper()
	ja, ok := out.(*interp.JaggedArray)
	require.True(t, ok, "got %T", out)
	require.Equal(t, stop-start, ja.Len())
	content := ja.Content.(*interp.Array).Values.([]int32)
	for i := start; i < stop; i++ {
		lo, hi := ja.Offsets[i-start], ja.Offsets[i-start+1]
		require.Equal(t, int64(i%4), hi-lo, "entry %d", i)
		for _, v := range content[lo:hi] {
			require.Equal(t, int32(i), v, "entry %d", i)
		}
	}
}

func requireLabels(t *testing.T, out any, start, stop int) {
	t.Helper()
	labels, ok := out.([]string)
	require.True(t, ok, "got %T", out)
	require.Len(t, labels, stop-start)
	for i := start; i < stop; i++ {
		require.Equal(t, label(i), labels[i-start])
	}
}

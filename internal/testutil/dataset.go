// Package testutil writes small datasets with real data files for tests
package testutil

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soltixdb/roly/internal/codec"
	"github.com/soltixdb/roly/internal/compression"
	"github.com/soltixdb/roly/internal/interp"
	"github.com/soltixdb/roly/internal/layout"
)

// Columns of the datasets WriteDataset produces. Entry i has x = i and
// n = 2*i.
var Columns = []string{"x", "n"}

const keylen = 16

// WriteDataset writes one uncompressed data file per element of files,
// holding that many entries, under dir/data and stores the dataset
// metadata as dir/<name>.roly
func WriteDataset(t testing.TB, dir, name string, files ...int) *layout.Dataset {
	t.Helper()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	out := make([]*layout.File, len(files))
	offsets := []uint64{0}
	global := 0
	for i, n := range files {
		var buf []byte
		branches := make([]*layout.Branch, len(Columns))
		for c := range Columns {
			buf = append(buf, make([]byte, keylen)...)
			seek := uint64(len(buf))
			for e := global; e < global+n; e++ {
				if c == 0 {
					buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(float64(e)))
				} else {
					buf = binary.BigEndian.AppendUint32(buf, uint32(2*e))
				}
			}
			b, err := layout.NewBranch(layout.BranchArrays{
				LocalOffsets:      []uint64{0, uint64(n)},
				PageSeeks:         []uint64{seek},
				Compression:       compression.None,
				UncompressedBytes: []uint32{uint32(uint64(len(buf)) - seek)},
				BasketPageOffsets: []uint32{0, 1},
			})
			require.NoError(t, err)
			branches[c] = b
		}

		location := fmt.Sprintf("%s-%d.root", name, i)
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, location), buf, 0o644))
		f, err := layout.NewFile(location, fmt.Sprintf("%s-uuid-%d", name, i), branches)
		require.NoError(t, err)
		out[i] = f
		global += n
		offsets = append(offsets, uint64(global))
	}

	ds, err := layout.NewDataset(layout.DatasetSpec{
		Name:     name,
		TreePath: "Events",
		ColNames: Columns,
		Columns: []layout.Column{
			{Interpretation: interp.NewFlat(interp.Primitive{DType: interp.Float64, BigEndian: true}), Title: "x/D"},
			{Interpretation: interp.NewFlat(interp.Primitive{DType: interp.Int32, BigEndian: true}), Title: "n/I"},
		},
		Files:          out,
		GlobalOffsets:  offsets,
		LocationPrefix: dataDir + "/",
	})
	require.NoError(t, err)
	require.NoError(t, codec.WriteFile(filepath.Join(dir, name+".roly"), ds))
	return ds
}

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/roly/internal/compression"
	"github.com/soltixdb/roly/internal/interp"
)

func rawBranch(t *testing.T, localOffsets []uint64) *Branch {
	t.Helper()
	n := len(localOffsets) - 1
	a := BranchArrays{
		LocalOffsets:      localOffsets,
		PageSeeks:         make([]uint64, n),
		UncompressedBytes: make([]uint32, n),
		BasketPageOffsets: make([]uint32, n+1),
	}
	for i := 0; i < n; i++ {
		a.PageSeeks[i] = uint64(1000 * (i + 1))
		a.UncompressedBytes[i] = uint32(8 * (localOffsets[i+1] - localOffsets[i]))
		a.BasketPageOffsets[i+1] = uint32(i + 1)
	}
	b, err := NewBranch(a)
	require.NoError(t, err)
	return b
}

func f8Column() Column {
	return Column{Interpretation: interp.NewFlat(interp.Primitive{DType: interp.Float64, BigEndian: true})}
}

func i4Column() Column {
	return Column{Interpretation: interp.NewFlat(interp.Primitive{DType: interp.Int32, BigEndian: true})}
}

func testDataset(t *testing.T, colNames []string, columns []Column, perFile ...[]uint64) *Dataset {
	t.Helper()
	offsets := []uint64{0}
	files := make([]*File, len(perFile))
	for i, local := range perFile {
		branches := make([]*Branch, len(colNames))
		for j := range branches {
			branches[j] = rawBranch(t, local)
		}
		f, err := NewFile("file"+string(rune('A'+i))+".root", "", branches)
		require.NoError(t, err)
		files[i] = f
		offsets = append(offsets, offsets[len(offsets)-1]+local[len(local)-1])
	}
	d, err := NewDataset(DatasetSpec{
		Name:          "events",
		TreePath:      "Events",
		ColNames:      colNames,
		Columns:       columns,
		Files:         files,
		GlobalOffsets: offsets,
	})
	require.NoError(t, err)
	return d
}

func TestPage(t *testing.T) {
	p := NewPage(100, 10, 20)
	assert.True(t, p.IsCompressed())
	assert.False(t, NewPage(100, 20, 20).IsCompressed())
}

func TestBranchValidation(t *testing.T) {
	valid := func() BranchArrays {
		return BranchArrays{
			LocalOffsets:      []uint64{0, 10, 25},
			PageSeeks:         []uint64{100, 200, 300},
			Compression:       compression.Zlib,
			CompressedBytes:   []uint32{40, 30, 50},
			UncompressedBytes: []uint32{80, 80, 120},
			BasketPageOffsets: []uint32{0, 2, 3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(a *BranchArrays)
		wantErr string
	}{
		{name: "valid", mutate: func(a *BranchArrays) {}},
		{name: "offsets not starting at zero", mutate: func(a *BranchArrays) { a.LocalOffsets[0] = 1 }, wantErr: "local_offsets must start with 0"},
		{name: "empty offsets", mutate: func(a *BranchArrays) { a.LocalOffsets = nil }, wantErr: "local_offsets must not be empty"},
		{name: "decreasing offsets", mutate: func(a *BranchArrays) { a.LocalOffsets[2] = 5 }, wantErr: "non-decreasing"},
		{name: "basket page offsets length", mutate: func(a *BranchArrays) { a.BasketPageOffsets = []uint32{0, 3} }, wantErr: "len mismatch"},
		{name: "basket page offsets end", mutate: func(a *BranchArrays) { a.BasketPageOffsets[2] = 2 }, wantErr: "page_seeks"},
		{name: "uncompressed length", mutate: func(a *BranchArrays) { a.UncompressedBytes = a.UncompressedBytes[:2] }, wantErr: "uncompressedbytes"},
		{name: "compressed length", mutate: func(a *BranchArrays) { a.CompressedBytes = a.CompressedBytes[:1] }, wantErr: "compressedbytes"},
		{name: "missing compressed sizes", mutate: func(a *BranchArrays) { a.CompressedBytes = nil }, wantErr: "compressedbytes is required"},
		{name: "compressed page without codec", mutate: func(a *BranchArrays) { a.Compression = compression.None }, wantErr: "branch compression is none"},
		{name: "unknown codec", mutate: func(a *BranchArrays) { a.Compression = 9 }, wantErr: "unknown compression"},
		{name: "borders length", mutate: func(a *BranchArrays) { a.BasketDataBorders = []uint32{1} }, wantErr: "basket_data_borders"},
		{name: "border past basket", mutate: func(a *BranchArrays) { a.BasketDataBorders = []uint32{161, 0} }, wantErr: "exceeds"},
		{name: "keylens without borders", mutate: func(a *BranchArrays) { a.BasketKeylens = []uint32{1, 1} }, wantErr: "requires basket_data_borders"},
		{name: "keylens length", mutate: func(a *BranchArrays) {
			a.BasketDataBorders = []uint32{10, 10}
			a.BasketKeylens = []uint32{1}
		}, wantErr: "basket_keylens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.mutate(&a)
			b, err := NewBranch(a)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, b)
				return
			}
			require.Error(t, err)
			var le *LayoutError
			require.ErrorAs(t, err, &le)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBranchAccessors(t *testing.T) {
	b, err := NewBranch(BranchArrays{
		LocalOffsets:      []uint64{0, 10, 25},
		PageSeeks:         []uint64{100, 200, 300},
		Compression:       compression.LZ4,
		CompressedBytes:   []uint32{40, 30, 50},
		UncompressedBytes: []uint32{80, 80, 120},
		BasketPageOffsets: []uint32{0, 2, 3},
		BasketDataBorders: []uint32{100, 0},
		BasketKeylens:     []uint32{60, 60},
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(25), b.NumEntries())
	assert.Equal(t, 2, b.NumBaskets())
	assert.Equal(t, 3, b.NumPages())
	assert.Equal(t, compression.LZ4, b.Compression())
	assert.Equal(t, NewPage(200, 30, 80), b.Page(1))

	basket := b.Basket(0)
	assert.Equal(t, uint64(0), basket.EntryStart)
	assert.Equal(t, uint64(10), basket.EntryStop)
	assert.Equal(t, 2, basket.NumPages())
	assert.Equal(t, uint64(70), basket.CompressedBytes)
	assert.Equal(t, uint64(160), basket.UncompressedBytes)
	assert.True(t, basket.HasOffsetTable())
	assert.Equal(t, uint64(100), basket.DataBytes())
	assert.Equal(t, uint32(60), basket.Keylen)

	last := b.Basket(1)
	assert.Equal(t, uint64(15), last.NumEntries())
	assert.False(t, last.HasOffsetTable())
	assert.Equal(t, uint64(120), last.DataBytes())
}

func TestBranchOwnsArrays(t *testing.T) {
	offsets := []uint64{0, 5}
	a := BranchArrays{
		LocalOffsets:      offsets,
		PageSeeks:         []uint64{10},
		UncompressedBytes: []uint32{40},
		BasketPageOffsets: []uint32{0, 1},
	}
	b, err := NewBranch(a)
	require.NoError(t, err)

	offsets[1] = 99
	assert.Equal(t, uint64(5), b.NumEntries())

	arrays := b.Arrays()
	arrays.LocalOffsets[1] = 42
	assert.Equal(t, uint64(5), b.NumEntries())
}

func TestBranchRawCompressedSizes(t *testing.T) {
	b := rawBranch(t, []uint64{0, 4})
	assert.False(t, b.HasCompressedBytes())
	assert.Equal(t, b.UncompressedBytes(), b.CompressedBytes())
	assert.False(t, b.Page(0).IsCompressed())
}

func TestEmptyBranch(t *testing.T) {
	b := EmptyBranch()
	assert.Equal(t, uint64(0), b.NumEntries())
	assert.Equal(t, 0, b.NumBaskets())
	assert.Equal(t, 0, b.NumPages())
	assert.True(t, b.Equal(EmptyBranch()))
}

func TestBranchEqual(t *testing.T) {
	a := rawBranch(t, []uint64{0, 10, 20})
	b := rawBranch(t, []uint64{0, 10, 20})
	c := rawBranch(t, []uint64{0, 10, 21})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))

	arrays := a.Arrays()
	arrays.BasketDataBorders = []uint32{0, 0}
	withBorders, err := NewBranch(arrays)
	require.NoError(t, err)
	assert.False(t, a.Equal(withBorders), "presence of optional arrays must agree")
}

func TestLazyBranch(t *testing.T) {
	eager := rawBranch(t, []uint64{0, 3, 9})
	arrays := eager.Arrays()
	lazyBranch, err := NewLazyBranch(arraysView{&arrays})
	require.NoError(t, err)
	assert.True(t, eager.Equal(lazyBranch))

	arrays.LocalOffsets[0] = 1
	_, err = NewLazyBranch(arraysView{&arrays})
	var le *LayoutError
	assert.ErrorAs(t, err, &le)
}

func TestFile(t *testing.T) {
	f, err := NewFile("a.root", "1234", []*Branch{rawBranch(t, []uint64{0, 10}), EmptyBranch()})
	require.NoError(t, err)
	assert.Equal(t, "a.root", f.Location())
	assert.Equal(t, "1234", f.UUID())
	assert.Equal(t, 2, f.NumBranches())

	n, err := f.NumEntries()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n)

	_, err = f.Branch(2)
	assert.Error(t, err)

	_, err = NewFile("b.root", "", []*Branch{nil})
	assert.Error(t, err)
}

func TestDatasetValidation(t *testing.T) {
	branch := rawBranch(t, []uint64{0, 10})
	file, err := NewFile("a.root", "", []*Branch{branch})
	require.NoError(t, err)

	base := func() DatasetSpec {
		return DatasetSpec{
			Name:          "events",
			TreePath:      "Events",
			ColNames:      []string{"x"},
			Columns:       []Column{f8Column()},
			Files:         []*File{file},
			GlobalOffsets: []uint64{0, 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(s *DatasetSpec)
		wantErr string
	}{
		{name: "valid", mutate: func(s *DatasetSpec) {}},
		{name: "colnames and columns differ", mutate: func(s *DatasetSpec) { s.ColNames = []string{"x", "y"} }, wantErr: "colnames"},
		{name: "duplicate names", mutate: func(s *DatasetSpec) {
			s.ColNames = []string{"x", "x"}
			s.Columns = []Column{f8Column(), f8Column()}
		}, wantErr: "duplicate"},
		{name: "offsets length", mutate: func(s *DatasetSpec) { s.GlobalOffsets = []uint64{0} }, wantErr: "global_offsets"},
		{name: "offsets start", mutate: func(s *DatasetSpec) { s.GlobalOffsets = []uint64{1, 10} }, wantErr: "start with 0"},
		{name: "entries disagree", mutate: func(s *DatasetSpec) { s.GlobalOffsets = []uint64{0, 11} }, wantErr: "entries"},
		{name: "branch count", mutate: func(s *DatasetSpec) {
			s.ColNames = []string{"x", "y"}
			s.Columns = []Column{f8Column(), f8Column()}
		}, wantErr: "branches"},
		{name: "missing interpretation", mutate: func(s *DatasetSpec) { s.Columns = []Column{{}} }, wantErr: "interpretation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(&s)
			d, err := NewDataset(s)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, uint64(10), d.NumEntries())
				return
			}
			var le *LayoutError
			require.ErrorAs(t, err, &le)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatasetAccessors(t *testing.T) {
	d := testDataset(t, []string{"x", "y"}, []Column{f8Column(), i4Column()},
		[]uint64{0, 500, 1000}, []uint64{0, 1000})
	d.locationPrefix = "s3://bucket/"

	assert.Equal(t, "events", d.Name())
	assert.Equal(t, "Events", d.TreePath())
	assert.Equal(t, []uint64{0, 1000, 2000}, d.GlobalOffsets())
	assert.Equal(t, uint64(2000), d.NumEntries())
	assert.Equal(t, 2, d.NumFiles())

	i, ok := d.ColumnIndex("y")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = d.ColumnIndex("z")
	assert.False(t, ok)

	start, stop := d.FileRange(1)
	assert.Equal(t, uint64(1000), start)
	assert.Equal(t, uint64(2000), stop)

	f, err := d.File(1)
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/fileB.root", d.FullLocation(f))

	names := d.ColNames()
	names[0] = "changed"
	assert.Equal(t, []string{"x", "y"}, d.ColNames())
}

func TestDatasetEqual(t *testing.T) {
	a := testDataset(t, []string{"x"}, []Column{f8Column()}, []uint64{0, 10})
	b := testDataset(t, []string{"x"}, []Column{f8Column()}, []uint64{0, 10})
	c := testDataset(t, []string{"x"}, []Column{i4Column()}, []uint64{0, 10})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestAddDisjointColumns(t *testing.T) {
	left := testDataset(t, []string{"x"}, []Column{f8Column()}, []uint64{0, 1000})
	right := testDataset(t, []string{"y"}, []Column{i4Column()}, []uint64{0, 400, 700})

	u, err := left.Add(right)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, u.ColNames())
	assert.Equal(t, []uint64{0, 1000, 1700}, u.GlobalOffsets())

	f0, err := u.File(0)
	require.NoError(t, err)
	b, err := f0.Branch(1)
	require.NoError(t, err)
	assert.True(t, b.Equal(EmptyBranch()))
	n, err := f0.NumEntries()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), n)

	f1, err := u.File(1)
	require.NoError(t, err)
	b, err = f1.Branch(0)
	require.NoError(t, err)
	assert.True(t, b.Equal(EmptyBranch()))

	// inputs are untouched
	assert.Equal(t, []string{"x"}, left.ColNames())
	lf, err := left.File(0)
	require.NoError(t, err)
	assert.Equal(t, 1, lf.NumBranches())
}

func TestAddMatchesColumnsByName(t *testing.T) {
	left := testDataset(t, []string{"x", "y"}, []Column{f8Column(), i4Column()}, []uint64{0, 10})
	right := testDataset(t, []string{"y", "x"}, []Column{i4Column(), f8Column()}, []uint64{0, 20})

	rf, err := right.File(0)
	require.NoError(t, err)
	ry, err := rf.Branch(0)
	require.NoError(t, err)

	u, err := left.Add(right)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, u.ColNames())
	assert.Equal(t, []uint64{0, 10, 30}, u.GlobalOffsets())

	uf, err := u.File(1)
	require.NoError(t, err)
	uy, err := uf.Branch(1)
	require.NoError(t, err)
	assert.True(t, ry.Equal(uy))
}

func TestAddIncompatible(t *testing.T) {
	left := testDataset(t, []string{"x"}, []Column{f8Column()}, []uint64{0, 10})

	renamed := testDataset(t, []string{"x"}, []Column{f8Column()}, []uint64{0, 10})
	renamed.name = "other"
	_, err := left.Add(renamed)
	var ie *IncompatibleDatasetError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "name", ie.Field)

	prefixed := testDataset(t, []string{"x"}, []Column{f8Column()}, []uint64{0, 10})
	prefixed.locationPrefix = "/data/"
	_, err = left.Add(prefixed)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "location_prefix", ie.Field)

	retyped := testDataset(t, []string{"x"}, []Column{i4Column()}, []uint64{0, 10})
	_, err = left.Add(retyped)
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "column x", ie.Field)
}

func TestMerge(t *testing.T) {
	a := testDataset(t, []string{"x"}, []Column{f8Column()}, []uint64{0, 10})
	b := testDataset(t, []string{"x"}, []Column{f8Column()}, []uint64{0, 5})
	c := testDataset(t, []string{"x"}, []Column{f8Column()}, []uint64{0, 7})

	m, err := Merge(a, b, c)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 10, 15, 22}, m.GlobalOffsets())
	assert.Equal(t, 3, m.NumFiles())

	_, err = Merge()
	assert.Error(t, err)
}

package layout

import (
	"slices"

	"github.com/soltixdb/roly/internal/compression"
	"github.com/soltixdb/roly/internal/lazy"
)

// BranchArrays holds the raw columnar geometry of one branch. A nil
// optional slice means the field is absent.
type BranchArrays struct {
	LocalOffsets      []uint64
	PageSeeks         []uint64
	Compression       compression.Algorithm
	CompressedBytes   []uint32 // optional when every page is stored raw
	UncompressedBytes []uint32
	BasketPageOffsets []uint32
	BasketDataBorders []uint32 // optional
	BasketKeylens     []uint32 // optional, requires BasketDataBorders
}

// BranchView gives indexed access to branch geometry without
// materializing it. The flatbuffer Branch accessor satisfies it through a
// thin adapter.
type BranchView interface {
	Compression() compression.Algorithm
	LocalOffsetsLength() int
	LocalOffsets(j int) uint64
	PageSeeksLength() int
	PageSeeks(j int) uint64
	HasCompressedbytes() bool
	CompressedbytesLength() int
	Compressedbytes(j int) uint32
	UncompressedbytesLength() int
	Uncompressedbytes(j int) uint32
	BasketPageOffsetsLength() int
	BasketPageOffsets(j int) uint32
	HasBasketDataBorders() bool
	BasketDataBordersLength() int
	BasketDataBorders(j int) uint32
	HasBasketKeylens() bool
	BasketKeylensLength() int
	BasketKeylens(j int) uint32
}

// Branch is the physical layout of one column within one file. Arrays are
// materialized on first access and must not be modified by callers.
type Branch struct {
	compression   compression.Algorithm
	numBaskets    int
	numPages      int
	hasCompressed bool
	hasBorders    bool
	hasKeylens    bool

	localOffsets      *lazy.Value[[]uint64]
	pageSeeks         *lazy.Value[[]uint64]
	compressedBytes   *lazy.Value[[]uint32]
	uncompressedBytes *lazy.Value[[]uint32]
	basketPageOffsets *lazy.Value[[]uint32]
	basketDataBorders *lazy.Value[[]uint32]
	basketKeylens     *lazy.Value[[]uint32]
}

// NewBranch validates arrays and builds a Branch that owns copies of them
func NewBranch(a BranchArrays) (*Branch, error) {
	if err := validateBranch(arraysView{&a}); err != nil {
		return nil, err
	}
	b := newBranchShape(arraysView{&a})
	b.localOffsets = lazy.Of(slices.Clone(a.LocalOffsets))
	b.pageSeeks = lazy.Of(nonNil(slices.Clone(a.PageSeeks)))
	b.compressedBytes = lazy.Of(cloneOptional(a.CompressedBytes))
	b.uncompressedBytes = lazy.Of(nonNil(slices.Clone(a.UncompressedBytes)))
	b.basketPageOffsets = lazy.Of(slices.Clone(a.BasketPageOffsets))
	b.basketDataBorders = lazy.Of(cloneOptional(a.BasketDataBorders))
	b.basketKeylens = lazy.Of(cloneOptional(a.BasketKeylens))
	return b, nil
}

// NewLazyBranch validates v in place and builds a Branch whose arrays are
// copied out of v on first access. v must stay valid for the lifetime of
// the Branch.
func NewLazyBranch(v BranchView) (*Branch, error) {
	if err := validateBranch(v); err != nil {
		return nil, err
	}
	b := newBranchShape(v)
	b.localOffsets = lazy.New(func() []uint64 { return readUint64s(v.LocalOffsetsLength(), v.LocalOffsets) })
	b.pageSeeks = lazy.New(func() []uint64 { return readUint64s(v.PageSeeksLength(), v.PageSeeks) })
	b.uncompressedBytes = lazy.New(func() []uint32 { return readUint32s(v.UncompressedbytesLength(), v.Uncompressedbytes) })
	b.basketPageOffsets = lazy.New(func() []uint32 { return readUint32s(v.BasketPageOffsetsLength(), v.BasketPageOffsets) })
	b.compressedBytes = lazy.New(func() []uint32 {
		if !b.hasCompressed {
			return nil
		}
		return readUint32s(v.CompressedbytesLength(), v.Compressedbytes)
	})
	b.basketDataBorders = lazy.New(func() []uint32 {
		if !b.hasBorders {
			return nil
		}
		return readUint32s(v.BasketDataBordersLength(), v.BasketDataBorders)
	})
	b.basketKeylens = lazy.New(func() []uint32 {
		if !b.hasKeylens {
			return nil
		}
		return readUint32s(v.BasketKeylensLength(), v.BasketKeylens)
	})
	return b, nil
}

// EmptyBranch returns a branch with no baskets and no entries, used to pad
// files that lack a column.
func EmptyBranch() *Branch {
	b, _ := NewBranch(BranchArrays{
		LocalOffsets:      []uint64{0},
		PageSeeks:         []uint64{},
		UncompressedBytes: []uint32{},
		BasketPageOffsets: []uint32{0},
	})
	return b
}

func newBranchShape(v BranchView) *Branch {
	return &Branch{
		compression:   v.Compression(),
		numBaskets:    v.LocalOffsetsLength() - 1,
		numPages:      v.PageSeeksLength(),
		hasCompressed: v.HasCompressedbytes(),
		hasBorders:    v.HasBasketDataBorders(),
		hasKeylens:    v.HasBasketKeylens(),
	}
}

func validateBranch(v BranchView) error {
	const entity = "branch"

	if !v.Compression().Valid() {
		return layoutErrorf(entity, "unknown compression id %d", uint8(v.Compression()))
	}

	n := v.LocalOffsetsLength()
	if n == 0 {
		return layoutErrorf(entity, "local_offsets must not be empty")
	}
	if v.LocalOffsets(0) != 0 {
		return layoutErrorf(entity, "local_offsets must start with 0")
	}
	for i := 1; i < n; i++ {
		if v.LocalOffsets(i) < v.LocalOffsets(i-1) {
			return layoutErrorf(entity, "local_offsets must be non-decreasing (index %d)", i)
		}
	}

	if m := v.BasketPageOffsetsLength(); m != n {
		return layoutErrorf(entity, "len mismatch: %d basket_page_offsets, %d local_offsets", m, n)
	}
	if v.BasketPageOffsets(0) != 0 {
		return layoutErrorf(entity, "basket_page_offsets must start with 0")
	}
	for i := 1; i < n; i++ {
		if v.BasketPageOffsets(i) < v.BasketPageOffsets(i-1) {
			return layoutErrorf(entity, "basket_page_offsets must be non-decreasing (index %d)", i)
		}
	}

	numPages := v.PageSeeksLength()
	if last := int(v.BasketPageOffsets(n - 1)); last != numPages {
		return layoutErrorf(entity, "basket_page_offsets ends at %d, but there are %d page_seeks", last, numPages)
	}
	if m := v.UncompressedbytesLength(); m != numPages {
		return layoutErrorf(entity, "len mismatch: %d uncompressedbytes, %d page_seeks", m, numPages)
	}

	if v.HasCompressedbytes() {
		if m := v.CompressedbytesLength(); m != numPages {
			return layoutErrorf(entity, "len mismatch: %d compressedbytes, %d page_seeks", m, numPages)
		}
		if v.Compression() == compression.None {
			for i := 0; i < numPages; i++ {
				if v.Compressedbytes(i) != v.Uncompressedbytes(i) {
					return layoutErrorf(entity, "page %d is compressed but branch compression is none", i)
				}
			}
		}
	} else if v.Compression() != compression.None && numPages > 0 {
		return layoutErrorf(entity, "compressedbytes is required with compression %s", v.Compression())
	}

	numBaskets := n - 1
	if v.HasBasketDataBorders() {
		if m := v.BasketDataBordersLength(); m != numBaskets {
			return layoutErrorf(entity, "len mismatch: %d basket_data_borders, %d baskets", m, numBaskets)
		}
		for i := 0; i < numBaskets; i++ {
			var size uint64
			for p := v.BasketPageOffsets(i); p < v.BasketPageOffsets(i+1); p++ {
				size += uint64(v.Uncompressedbytes(int(p)))
			}
			if uint64(v.BasketDataBorders(i)) > size {
				return layoutErrorf(entity, "basket %d data border %d exceeds its %d bytes", i, v.BasketDataBorders(i), size)
			}
		}
	}
	if v.HasBasketKeylens() {
		if !v.HasBasketDataBorders() {
			return layoutErrorf(entity, "basket_keylens requires basket_data_borders")
		}
		if m := v.BasketKeylensLength(); m != numBaskets {
			return layoutErrorf(entity, "len mismatch: %d basket_keylens, %d baskets", m, numBaskets)
		}
	}
	return nil
}

// Compression returns the codec of every compressed page in the branch
func (b *Branch) Compression() compression.Algorithm { return b.compression }

// NumBaskets returns the number of baskets
func (b *Branch) NumBaskets() int { return b.numBaskets }

// NumPages returns the number of pages across all baskets
func (b *Branch) NumPages() int { return b.numPages }

// NumEntries returns the number of entries, the last local offset
func (b *Branch) NumEntries() uint64 {
	offsets := b.localOffsets.Get()
	return offsets[len(offsets)-1]
}

func (b *Branch) LocalOffsets() []uint64      { return b.localOffsets.Get() }
func (b *Branch) PageSeeks() []uint64         { return b.pageSeeks.Get() }
func (b *Branch) UncompressedBytes() []uint32 { return b.uncompressedBytes.Get() }
func (b *Branch) BasketPageOffsets() []uint32 { return b.basketPageOffsets.Get() }

// CompressedBytes returns the stored page sizes. When the field is absent
// every page is stored raw and the uncompressed sizes are returned.
func (b *Branch) CompressedBytes() []uint32 {
	if !b.hasCompressed {
		return b.uncompressedBytes.Get()
	}
	return b.compressedBytes.Get()
}

// HasCompressedBytes reports whether compressed sizes were recorded
func (b *Branch) HasCompressedBytes() bool { return b.hasCompressed }

// BasketDataBorders returns the per-basket data borders, or nil
func (b *Branch) BasketDataBorders() []uint32 { return b.basketDataBorders.Get() }

// HasDataBorders reports whether data borders were recorded
func (b *Branch) HasDataBorders() bool { return b.hasBorders }

// BasketKeylens returns the per-basket key lengths, or nil
func (b *Branch) BasketKeylens() []uint32 { return b.basketKeylens.Get() }

// HasKeylens reports whether key lengths were recorded
func (b *Branch) HasKeylens() bool { return b.hasKeylens }

// Page returns page i
func (b *Branch) Page(i int) Page {
	return NewPage(b.PageSeeks()[i], b.CompressedBytes()[i], b.UncompressedBytes()[i])
}

// Basket returns the derived view of basket i
func (b *Branch) Basket(i int) Basket {
	offsets := b.LocalOffsets()
	pages := b.BasketPageOffsets()
	basket := Basket{
		Index:      i,
		EntryStart: offsets[i],
		EntryStop:  offsets[i+1],
		PageStart:  int(pages[i]),
		PageStop:   int(pages[i+1]),
	}
	if b.hasBorders {
		basket.DataBorder = b.BasketDataBorders()[i]
	}
	if b.hasKeylens {
		basket.Keylen = b.BasketKeylens()[i]
	}
	compressed, uncompressed := b.CompressedBytes(), b.UncompressedBytes()
	for p := basket.PageStart; p < basket.PageStop; p++ {
		basket.CompressedBytes += uint64(compressed[p])
		basket.UncompressedBytes += uint64(uncompressed[p])
	}
	return basket
}

// Arrays returns a copy of the branch geometry
func (b *Branch) Arrays() BranchArrays {
	return BranchArrays{
		LocalOffsets:      slices.Clone(b.LocalOffsets()),
		PageSeeks:         nonNil(slices.Clone(b.PageSeeks())),
		Compression:       b.compression,
		CompressedBytes:   cloneOptional(b.compressedBytes.Get()),
		UncompressedBytes: nonNil(slices.Clone(b.UncompressedBytes())),
		BasketPageOffsets: slices.Clone(b.BasketPageOffsets()),
		BasketDataBorders: cloneOptional(b.BasketDataBorders()),
		BasketKeylens:     cloneOptional(b.BasketKeylens()),
	}
}

// Equal reports deep equality, including which optional arrays are present
func (b *Branch) Equal(o *Branch) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.compression == o.compression &&
		b.hasCompressed == o.hasCompressed &&
		b.hasBorders == o.hasBorders &&
		b.hasKeylens == o.hasKeylens &&
		slices.Equal(b.LocalOffsets(), o.LocalOffsets()) &&
		slices.Equal(b.PageSeeks(), o.PageSeeks()) &&
		slices.Equal(b.compressedBytes.Get(), o.compressedBytes.Get()) &&
		slices.Equal(b.UncompressedBytes(), o.UncompressedBytes()) &&
		slices.Equal(b.BasketPageOffsets(), o.BasketPageOffsets()) &&
		slices.Equal(b.BasketDataBorders(), o.BasketDataBorders()) &&
		slices.Equal(b.BasketKeylens(), o.BasketKeylens())
}

func cloneOptional(s []uint32) []uint32 {
	if s == nil {
		return nil
	}
	return append(make([]uint32, 0, len(s)), s...)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func readUint64s(n int, at func(int) uint64) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = at(i)
	}
	return out
}

func readUint32s(n int, at func(int) uint32) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = at(i)
	}
	return out
}

// arraysView adapts BranchArrays to BranchView for validation
type arraysView struct {
	a *BranchArrays
}

func (v arraysView) Compression() compression.Algorithm { return v.a.Compression }
func (v arraysView) LocalOffsetsLength() int            { return len(v.a.LocalOffsets) }
func (v arraysView) LocalOffsets(j int) uint64          { return v.a.LocalOffsets[j] }
func (v arraysView) PageSeeksLength() int               { return len(v.a.PageSeeks) }
func (v arraysView) PageSeeks(j int) uint64             { return v.a.PageSeeks[j] }
func (v arraysView) HasCompressedbytes() bool           { return v.a.CompressedBytes != nil }
func (v arraysView) CompressedbytesLength() int         { return len(v.a.CompressedBytes) }
func (v arraysView) Compressedbytes(j int) uint32       { return v.a.CompressedBytes[j] }
func (v arraysView) UncompressedbytesLength() int       { return len(v.a.UncompressedBytes) }
func (v arraysView) Uncompressedbytes(j int) uint32     { return v.a.UncompressedBytes[j] }
func (v arraysView) BasketPageOffsetsLength() int       { return len(v.a.BasketPageOffsets) }
func (v arraysView) BasketPageOffsets(j int) uint32     { return v.a.BasketPageOffsets[j] }
func (v arraysView) HasBasketDataBorders() bool         { return v.a.BasketDataBorders != nil }
func (v arraysView) BasketDataBordersLength() int       { return len(v.a.BasketDataBorders) }
func (v arraysView) BasketDataBorders(j int) uint32     { return v.a.BasketDataBorders[j] }
func (v arraysView) HasBasketKeylens() bool             { return v.a.BasketKeylens != nil }
func (v arraysView) BasketKeylensLength() int           { return len(v.a.BasketKeylens) }
func (v arraysView) BasketKeylens(j int) uint32         { return v.a.BasketKeylens[j] }

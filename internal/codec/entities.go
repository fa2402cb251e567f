package codec

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/soltixdb/roly/internal/compression"
	"github.com/soltixdb/roly/internal/fbs/layoutfb"
	"github.com/soltixdb/roly/internal/layout"
	"github.com/soltixdb/roly/internal/lazy"
)

// EncodePage serializes a single page as a standalone buffer
func EncodePage(p layout.Page) []byte {
	b := flatbuffers.NewBuilder(64)
	layoutfb.PageStart(b)
	layoutfb.PageAddFileSeek(b, p.FileSeek)
	layoutfb.PageAddCompressedbytes(b, p.CompressedBytes)
	layoutfb.PageAddUncompressedbytes(b, p.UncompressedBytes)
	b.Finish(layoutfb.PageEnd(b))
	return b.FinishedBytes()
}

// DecodePage reads a buffer produced by EncodePage
func DecodePage(buf []byte) (p layout.Page, err error) {
	defer guard(&err, "page")
	fb := layoutfb.GetRootAsPage(buf, 0)
	return layout.NewPage(fb.FileSeek(), fb.Compressedbytes(), fb.Uncompressedbytes()), nil
}

// EncodeBranch serializes a single branch as a standalone buffer
func EncodeBranch(br *layout.Branch) []byte {
	b := flatbuffers.NewBuilder(initialBufferSize)
	b.Finish(buildBranch(b, br))
	return b.FinishedBytes()
}

// DecodeBranch reads a buffer produced by EncodeBranch. The branch views
// buf until its arrays are first used.
func DecodeBranch(buf []byte) (br *layout.Branch, err error) {
	defer guard(&err, "branch")
	return readBranch(layoutfb.GetRootAsBranch(buf, 0))
}

// EncodeColumn serializes a single column as a standalone buffer
func EncodeColumn(c layout.Column) ([]byte, error) {
	b := flatbuffers.NewBuilder(initialBufferSize)
	off, err := buildColumn(b, c)
	if err != nil {
		return nil, err
	}
	b.Finish(off)
	return b.FinishedBytes(), nil
}

// DecodeColumn reads a buffer produced by EncodeColumn
func DecodeColumn(buf []byte) (c layout.Column, err error) {
	defer guard(&err, "column")
	return readColumn(layoutfb.GetRootAsColumn(buf, 0))
}

// EncodeFile serializes a single file as a standalone buffer
func EncodeFile(f *layout.File) ([]byte, error) {
	b := flatbuffers.NewBuilder(initialBufferSize)
	off, err := buildFile(b, f)
	if err != nil {
		return nil, err
	}
	b.Finish(off)
	return b.FinishedBytes(), nil
}

// DecodeFile reads a buffer produced by EncodeFile
func DecodeFile(buf []byte) (f *layout.File, err error) {
	defer guard(&err, "file")
	return readFile(layoutfb.GetRootAsFile(buf, 0)), nil
}

func buildBranch(b *flatbuffers.Builder, br *layout.Branch) flatbuffers.UOffsetT {
	a := br.Arrays()

	localOffsets := uint64Vector(b, layoutfb.BranchStartLocalOffsetsVector, a.LocalOffsets)
	pageSeeks := uint64Vector(b, layoutfb.BranchStartPageSeeksVector, a.PageSeeks)
	uncompressed := uint32Vector(b, layoutfb.BranchStartUncompressedbytesVector, a.UncompressedBytes)
	basketPages := uint32Vector(b, layoutfb.BranchStartBasketPageOffsetsVector, a.BasketPageOffsets)
	var compressed, borders, keylens flatbuffers.UOffsetT
	if a.CompressedBytes != nil {
		compressed = uint32Vector(b, layoutfb.BranchStartCompressedbytesVector, a.CompressedBytes)
	}
	if a.BasketDataBorders != nil {
		borders = uint32Vector(b, layoutfb.BranchStartBasketDataBordersVector, a.BasketDataBorders)
	}
	if a.BasketKeylens != nil {
		keylens = uint32Vector(b, layoutfb.BranchStartBasketKeylensVector, a.BasketKeylens)
	}

	layoutfb.BranchStart(b)
	layoutfb.BranchAddLocalOffsets(b, localOffsets)
	layoutfb.BranchAddPageSeeks(b, pageSeeks)
	layoutfb.BranchAddCompression(b, layoutfb.Compression(a.Compression))
	if compressed != 0 {
		layoutfb.BranchAddCompressedbytes(b, compressed)
	}
	layoutfb.BranchAddUncompressedbytes(b, uncompressed)
	layoutfb.BranchAddBasketPageOffsets(b, basketPages)
	if borders != 0 {
		layoutfb.BranchAddBasketDataBorders(b, borders)
	}
	if keylens != 0 {
		layoutfb.BranchAddBasketKeylens(b, keylens)
	}
	return layoutfb.BranchEnd(b)
}

// branchView adapts the generated accessor to layout.BranchView
type branchView struct {
	*layoutfb.Branch
}

func (v branchView) Compression() compression.Algorithm {
	return compression.Algorithm(v.Branch.Compression())
}

func readBranch(fb *layoutfb.Branch) (*layout.Branch, error) {
	touchBranch(fb)
	return layout.NewLazyBranch(branchView{fb})
}

// touchBranch reads the last element of every vector so a truncated
// buffer fails while decoding instead of on first use.
func touchBranch(fb *layoutfb.Branch) {
	if n := fb.LocalOffsetsLength(); n > 0 {
		fb.LocalOffsets(n - 1)
	}
	if n := fb.PageSeeksLength(); n > 0 {
		fb.PageSeeks(n - 1)
	}
	if n := fb.CompressedbytesLength(); n > 0 {
		fb.Compressedbytes(n - 1)
	}
	if n := fb.UncompressedbytesLength(); n > 0 {
		fb.Uncompressedbytes(n - 1)
	}
	if n := fb.BasketPageOffsetsLength(); n > 0 {
		fb.BasketPageOffsets(n - 1)
	}
	if n := fb.BasketDataBordersLength(); n > 0 {
		fb.BasketDataBorders(n - 1)
	}
	if n := fb.BasketKeylensLength(); n > 0 {
		fb.BasketKeylens(n - 1)
	}
}

func buildColumn(b *flatbuffers.Builder, c layout.Column) (flatbuffers.UOffsetT, error) {
	desc, err := buildInterpretation(b, c.Interpretation)
	if err != nil {
		return 0, err
	}
	var title flatbuffers.UOffsetT
	if c.Title != "" {
		title = b.CreateString(c.Title)
	}
	layoutfb.ColumnStart(b)
	layoutfb.ColumnAddInterpretation(b, desc)
	if title != 0 {
		layoutfb.ColumnAddTitle(b, title)
	}
	return layoutfb.ColumnEnd(b), nil
}

func readColumn(fb *layoutfb.Column) (layout.Column, error) {
	desc := fb.Interpretation(nil)
	if desc == nil {
		return layout.Column{}, &layout.LayoutError{Entity: "column", Reason: "interpretation is required"}
	}
	d, err := readInterpretation(desc)
	if err != nil {
		return layout.Column{}, err
	}
	var title string
	if fb.HasTitle() {
		title = string(fb.Title())
	}
	return layout.NewColumn(d, title)
}

func buildFile(b *flatbuffers.Builder, f *layout.File) (flatbuffers.UOffsetT, error) {
	branches, err := f.Branches()
	if err != nil {
		return 0, err
	}
	offsets := make([]flatbuffers.UOffsetT, len(branches))
	for i, br := range branches {
		offsets[i] = buildBranch(b, br)
	}
	location := b.CreateString(f.Location())
	uuid := b.CreateString(f.UUID())
	branchVec := offsetVector(b, layoutfb.FileStartBranchesVector, offsets)

	layoutfb.FileStart(b)
	layoutfb.FileAddLocation(b, location)
	layoutfb.FileAddUuid(b, uuid)
	layoutfb.FileAddBranches(b, branchVec)
	return layoutfb.FileEnd(b), nil
}

func readFile(fb *layoutfb.File) *layout.File {
	branches := lazy.NewList(fb.BranchesLength(), func(i int) (br *layout.Branch, err error) {
		defer guard(&err, "branch")
		view := new(layoutfb.Branch)
		if !fb.Branches(view, i) {
			return nil, &layout.LayoutError{Entity: "branch", Reason: "missing table"}
		}
		return readBranch(view)
	})
	return layout.NewLazyFile(string(fb.Location()), string(fb.Uuid()), branches)
}

// Package analyze derives branch geometry from the basket keys of a data
// file and assembles datasets from analyzer manifests.
package analyze

import (
	"context"
	"fmt"
	"io"

	"github.com/soltixdb/roly/internal/compression"
	"github.com/soltixdb/roly/internal/deliver"
	"github.com/soltixdb/roly/internal/layout"
)

// BasketKey holds the key fields of one basket as a tree-file analyzer
// reports them
type BasketKey struct {
	SeekKey uint64 `json:"seek_key"`
	Keylen  uint32 `json:"keylen"`
	Nbytes  uint32 `json:"nbytes"`
	Objlen  uint32 `json:"objlen"`
	Border  uint32 `json:"border"`
}

// CompressedBytes returns the stored size of the basket after its key
func (k BasketKey) CompressedBytes() uint32 {
	return k.Nbytes - k.Keylen
}

// IsCompressed reports whether the basket payload is framed in chunks
func (k BasketKey) IsCompressed() bool {
	return k.CompressedBytes() != k.Objlen
}

// HasBorder reports whether the basket ends with an entry offset table
func (k BasketKey) HasBorder() bool {
	return k.Objlen != k.Border
}

// BranchFromKeys walks the baskets of one branch in r and returns their
// geometry. Compressed baskets are split into pages at their chunk
// headers. Location names r in errors.
func BranchFromKeys(ctx context.Context, r io.ReaderAt, location string, localOffsets []uint64, keys []BasketKey) (*layout.Branch, error) {
	if len(localOffsets) != len(keys)+1 {
		return nil, fmt.Errorf("%s: %d local offsets for %d baskets", location, len(localOffsets), len(keys))
	}

	w := &walker{r: r, location: location}
	a := layout.BranchArrays{
		LocalOffsets:      append([]uint64(nil), localOffsets...),
		PageSeeks:         make([]uint64, 0, len(keys)),
		UncompressedBytes: make([]uint32, 0, len(keys)),
		BasketPageOffsets: make([]uint32, 1, len(keys)+1),
	}
	compressed := make([]uint32, 0, len(keys))
	borders := make([]uint32, len(keys))
	anyBorder := false

	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if key.Nbytes < key.Keylen {
			return nil, w.corrupt(i, fmt.Sprintf("key length %d exceeds basket size %d", key.Keylen, key.Nbytes))
		}

		start := key.SeekKey + uint64(key.Keylen)
		if !key.IsCompressed() {
			a.PageSeeks = append(a.PageSeeks, start)
			compressed = append(compressed, key.CompressedBytes())
			a.UncompressedBytes = append(a.UncompressedBytes, key.Objlen)
		} else {
			pages, err := w.pages(i, start, key)
			if err != nil {
				return nil, err
			}
			for _, p := range pages {
				a.PageSeeks = append(a.PageSeeks, p.FileSeek)
				compressed = append(compressed, p.CompressedBytes)
				a.UncompressedBytes = append(a.UncompressedBytes, p.UncompressedBytes)
			}
		}
		a.BasketPageOffsets = append(a.BasketPageOffsets, uint32(len(a.PageSeeks)))

		if key.HasBorder() {
			borders[i] = key.Border
			anyBorder = true
		}
	}

	a.Compression = w.codec
	if w.codec != compression.None {
		a.CompressedBytes = compressed
	}
	if anyBorder {
		a.BasketDataBorders = borders
		a.BasketKeylens = make([]uint32, len(keys))
		for i, key := range keys {
			a.BasketKeylens[i] = key.Keylen
		}
	}
	return layout.NewBranch(a)
}

// walker carries the codec seen so far across the baskets of a branch
type walker struct {
	r        io.ReaderAt
	location string
	codec    compression.Algorithm
	header   [compression.ChunkHeaderSize]byte
}

func (w *walker) corrupt(basket int, reason string) error {
	return &deliver.CorruptBasketError{Location: w.location, Basket: basket, Reason: reason}
}

// pages reads the chunk headers of one compressed basket
func (w *walker) pages(basket int, start uint64, key BasketKey) ([]layout.Page, error) {
	var pages []layout.Page
	total := uint64(key.CompressedBytes())
	var uncompressed uint64
	pos := start
	for pos-start < total {
		n, err := w.r.ReadAt(w.header[:], int64(pos))
		if n < len(w.header) {
			return nil, w.corrupt(basket, fmt.Sprintf("chunk header at %d: %v", pos, err))
		}
		h, err := compression.ParseChunkHeader(w.header[:])
		if err != nil {
			return nil, w.corrupt(basket, fmt.Sprintf("chunk header at %d: %v", pos, err))
		}
		if h.Algorithm == compression.Old {
			return nil, &compression.UnsupportedCompressionError{Algorithm: h.Algorithm}
		}
		if w.codec != compression.None && w.codec != h.Algorithm {
			return nil, &deliver.InconsistentCompressionError{Location: w.location, Expected: w.codec, Found: h.Algorithm}
		}
		w.codec = h.Algorithm

		pos += compression.ChunkHeaderSize
		size := h.CompressedSize
		if h.Algorithm == compression.LZ4 {
			if size < compression.LZ4ChecksumSize {
				return nil, w.corrupt(basket, fmt.Sprintf("lz4 chunk at %d is %d bytes", pos, size))
			}
			pos += compression.LZ4ChecksumSize
			size -= compression.LZ4ChecksumSize
		}
		pages = append(pages, layout.NewPage(pos, uint32(size), uint32(h.UncompressedSize)))
		uncompressed += uint64(h.UncompressedSize)
		pos += uint64(size)
	}

	if pos-start != total {
		return nil, w.corrupt(basket, fmt.Sprintf("chunks span %d bytes, basket has %d", pos-start, total))
	}
	if uncompressed != uint64(key.Objlen) {
		return nil, w.corrupt(basket, fmt.Sprintf("chunks hold %d bytes, basket has %d", uncompressed, key.Objlen))
	}
	return pages, nil
}

package compression

import (
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// ErrIncompressible is returned by LZ4Compressor.Compress when the block
// would not shrink; such pages are stored uncompressed.
var ErrIncompressible = errors.New("lz4: data is incompressible")

// LZ4Compressor implements Compressor using raw lz4 blocks. Blocks carry no
// size prefix, so the caller supplies the uncompressed size.
type LZ4Compressor struct{}

// NewLZ4Compressor creates a new lz4 block compressor
func NewLZ4Compressor() *LZ4Compressor {
	return &LZ4Compressor{}
}

// Compress compresses data into a single lz4 block
func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress failed: %w", err)
	}
	if n == 0 {
		return nil, ErrIncompressible
	}
	return dst[:n], nil
}

// Decompress decompresses a single lz4 block
func (c *LZ4Compressor) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress failed: %w", err)
	}
	if n != uncompressedSize {
		return nil, &SizeMismatchError{Algorithm: LZ4, Got: n, Expected: uncompressedSize}
	}
	return dst, nil
}

// Algorithm returns LZ4
func (c *LZ4Compressor) Algorithm() Algorithm {
	return LZ4
}

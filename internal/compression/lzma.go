package compression

import (
	"bytes"
	"fmt"

	"github.com/ulikunitz/xz"
)

// LzmaCompressor implements Compressor using the xz container, which is
// what "XZ" chunks carry.
type LzmaCompressor struct{}

// NewLzmaCompressor creates a new lzma compressor
func NewLzmaCompressor() *LzmaCompressor {
	return &LzmaCompressor{}
}

// Compress compresses data into an xz stream
func (l *LzmaCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("lzma compress failed: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lzma compress failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lzma compress failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress decompresses an xz stream
func (l *LzmaCompressor) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("lzma decompress failed: %w", err)
	}
	return readExactly(r, Lzma, uncompressedSize)
}

// Algorithm returns Lzma
func (l *LzmaCompressor) Algorithm() Algorithm {
	return Lzma
}

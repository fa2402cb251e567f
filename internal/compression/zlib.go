package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ZlibCompressor implements Compressor using zlib streams
type ZlibCompressor struct{}

// NewZlibCompressor creates a new zlib compressor
func NewZlibCompressor() *ZlibCompressor {
	return &ZlibCompressor{}
}

// Compress compresses data using zlib
func (z *ZlibCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compress failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress decompresses a zlib stream
func (z *ZlibCompressor) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib decompress failed: %w", err)
	}
	defer func() { _ = r.Close() }()

	return readExactly(r, Zlib, uncompressedSize)
}

// Algorithm returns Zlib
func (z *ZlibCompressor) Algorithm() Algorithm {
	return Zlib
}

// readExactly drains r and checks the result is exactly size bytes long.
func readExactly(r io.Reader, algo Algorithm, size int) ([]byte, error) {
	out := make([]byte, size)
	n, err := io.ReadFull(r, out)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return nil, &SizeMismatchError{Algorithm: algo, Got: n, Expected: size}
	}
	if err != nil {
		return nil, fmt.Errorf("%s decompress failed: %w", algo, err)
	}

	var extra [1]byte
	if m, _ := r.Read(extra[:]); m != 0 {
		return nil, &SizeMismatchError{Algorithm: algo, Got: size + m, Expected: size}
	}
	return out, nil
}

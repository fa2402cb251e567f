package compression

import (
	"fmt"
	"strings"
)

// Algorithm identifies a page codec. The numeric values are part of the
// metadata format and must not change.
type Algorithm uint8

const (
	None Algorithm = 0
	Zlib Algorithm = 1
	Lzma Algorithm = 2
	Old  Algorithm = 3
	LZ4  Algorithm = 4
)

var algorithmNames = map[Algorithm]string{
	None: "none",
	Zlib: "zlib",
	Lzma: "lzma",
	Old:  "old",
	LZ4:  "lz4",
}

// String returns the lower-case codec name
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(a))
}

// Valid reports whether a is one of the known codecs, supported or not
func (a Algorithm) Valid() bool {
	_, ok := algorithmNames[a]
	return ok
}

// ParseAlgorithm parses a codec name as produced by String
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return None, nil
	}
	for algo, n := range algorithmNames {
		if n == name {
			return algo, nil
		}
	}
	return None, fmt.Errorf("unknown compression algorithm: %q", name)
}

// UnsupportedCompressionError is returned for codecs that are recognized
// but cannot be decoded, and for unknown codec ids.
type UnsupportedCompressionError struct {
	Algorithm Algorithm
}

func (e *UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("unsupported compression algorithm: %s", e.Algorithm)
}

// Compressor interface for compression algorithms
type Compressor interface {
	// Compress compresses data
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data into exactly uncompressedSize bytes
	Decompress(data []byte, uncompressedSize int) ([]byte, error)

	// Algorithm returns the compression algorithm type
	Algorithm() Algorithm
}

// GetCompressor returns a compressor for the given algorithm
func GetCompressor(algo Algorithm) (Compressor, error) {
	switch algo {
	case None:
		return &NoneCompressor{}, nil
	case Zlib:
		return NewZlibCompressor(), nil
	case Lzma:
		return NewLzmaCompressor(), nil
	case LZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, &UnsupportedCompressionError{Algorithm: algo}
	}
}

// NoneCompressor is a no-op compressor
type NoneCompressor struct{}

func (n *NoneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (n *NoneCompressor) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	if len(data) != uncompressedSize {
		return nil, &SizeMismatchError{Algorithm: None, Got: len(data), Expected: uncompressedSize}
	}
	return data, nil
}

func (n *NoneCompressor) Algorithm() Algorithm {
	return None
}

// SizeMismatchError reports a page whose decoded size disagrees with the
// declared uncompressed size.
type SizeMismatchError struct {
	Algorithm Algorithm
	Got       int
	Expected  int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%s: got %d uncompressed bytes, expected %d", e.Algorithm, e.Got, e.Expected)
}

package compression

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

const (
	// ChunkHeaderSize is the size of the header in front of every
	// compressed chunk: a 2-byte tag, a method byte and two 3-byte
	// little-endian sizes.
	ChunkHeaderSize = 9

	// LZ4ChecksumSize is the size of the checksum between an lz4 chunk
	// header and its block. It counts towards the header's compressed size.
	LZ4ChecksumSize = 8

	// MaxChunkSize is the largest size a 3-byte size field can carry
	MaxChunkSize = 1<<24 - 1
)

var (
	ErrShortChunkHeader = errors.New("chunk header too short")
	ErrChunkTooLarge    = errors.New("chunk exceeds maximum chunk size")
)

var algorithmTags = map[string]Algorithm{
	"ZL": Zlib,
	"XZ": Lzma,
	"CS": Old,
	"L4": LZ4,
}

// AlgorithmFromTag maps a 2-byte chunk tag to its codec
func AlgorithmFromTag(tag string) (Algorithm, error) {
	if algo, ok := algorithmTags[tag]; ok {
		return algo, nil
	}
	return None, fmt.Errorf("unknown chunk tag: %q", tag)
}

// Tag returns the 2-byte chunk tag of a, or "" for None.
func (a Algorithm) Tag() string {
	for tag, algo := range algorithmTags {
		if algo == a {
			return tag
		}
	}
	return ""
}

// ChunkHeader is a decoded chunk header
type ChunkHeader struct {
	Algorithm        Algorithm
	Method           byte
	CompressedSize   int
	UncompressedSize int
}

// ParseChunkHeader decodes the first ChunkHeaderSize bytes of b
func ParseChunkHeader(b []byte) (ChunkHeader, error) {
	if len(b) < ChunkHeaderSize {
		return ChunkHeader{}, ErrShortChunkHeader
	}
	algo, err := AlgorithmFromTag(string(b[0:2]))
	if err != nil {
		return ChunkHeader{}, err
	}
	return ChunkHeader{
		Algorithm:        algo,
		Method:           b[2],
		CompressedSize:   int(b[3]) | int(b[4])<<8 | int(b[5])<<16,
		UncompressedSize: int(b[6]) | int(b[7])<<8 | int(b[8])<<16,
	}, nil
}

// AppendChunkHeader appends the encoded header to dst
func AppendChunkHeader(dst []byte, h ChunkHeader) ([]byte, error) {
	if h.CompressedSize > MaxChunkSize || h.UncompressedSize > MaxChunkSize {
		return nil, ErrChunkTooLarge
	}
	tag := h.Algorithm.Tag()
	if tag == "" {
		return nil, &UnsupportedCompressionError{Algorithm: h.Algorithm}
	}
	return append(dst,
		tag[0], tag[1], h.Method,
		byte(h.CompressedSize), byte(h.CompressedSize>>8), byte(h.CompressedSize>>16),
		byte(h.UncompressedSize), byte(h.UncompressedSize>>8), byte(h.UncompressedSize>>16),
	), nil
}

// LZ4Checksum computes the checksum stored in front of an lz4 block
func LZ4Checksum(block []byte) uint64 {
	return xxhash.Sum64(block)
}

// FrameChunk compresses data with algo and returns header and payload as
// one chunk. For lz4 the checksum is inserted between the two.
func FrameChunk(algo Algorithm, data []byte) ([]byte, error) {
	if len(data) > MaxChunkSize {
		return nil, ErrChunkTooLarge
	}
	c, err := GetCompressor(algo)
	if err != nil {
		return nil, err
	}
	if algo == None {
		return nil, fmt.Errorf("uncompressed data is not framed")
	}
	payload, err := c.Compress(data)
	if err != nil {
		return nil, err
	}

	h := ChunkHeader{Algorithm: algo, CompressedSize: len(payload), UncompressedSize: len(data)}
	if algo == Zlib {
		h.Method = 8
	}
	if algo == LZ4 {
		h.CompressedSize += LZ4ChecksumSize
	}

	out, err := AppendChunkHeader(make([]byte, 0, ChunkHeaderSize+h.CompressedSize), h)
	if err != nil {
		return nil, err
	}
	if algo == LZ4 {
		out = binary.BigEndian.AppendUint64(out, LZ4Checksum(payload))
	}
	return append(out, payload...), nil
}

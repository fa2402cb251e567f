package compression

import (
	"bytes"
	"errors"
	"testing"
)

func sampleData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 17)
	}
	return data
}

func TestNoneCompressor_Algorithm(t *testing.T) {
	compressor := &NoneCompressor{}

	if compressor.Algorithm() != None {
		t.Errorf("Expected algorithm None (%d), got %d", None, compressor.Algorithm())
	}
}

func TestNoneCompressor_CompressDecompress(t *testing.T) {
	compressor := &NoneCompressor{}

	original := []byte("No compression test data")

	compressed, err := compressor.Compress(original)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if !bytes.Equal(original, compressed) {
		t.Error("NoneCompressor.Compress should return identical data")
	}

	decompressed, err := compressor.Decompress(compressed, len(original))
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(original, decompressed) {
		t.Error("NoneCompressor.Decompress should return identical data")
	}

	if _, err := compressor.Decompress(compressed, len(original)+1); err == nil {
		t.Error("Expected size mismatch error")
	}
}

func TestCompressors_RoundTrip(t *testing.T) {
	for _, algo := range []Algorithm{None, Zlib, Lzma, LZ4} {
		t.Run(algo.String(), func(t *testing.T) {
			compressor, err := GetCompressor(algo)
			if err != nil {
				t.Fatalf("GetCompressor(%s) failed: %v", algo, err)
			}
			if compressor.Algorithm() != algo {
				t.Errorf("Expected %s algorithm, got %s", algo, compressor.Algorithm())
			}

			original := sampleData(4096)
			compressed, err := compressor.Compress(original)
			if err != nil {
				t.Fatalf("Compress failed: %v", err)
			}
			if algo != None && len(compressed) >= len(original) {
				t.Errorf("Expected %s to shrink repetitive data, got %d bytes", algo, len(compressed))
			}

			decompressed, err := compressor.Decompress(compressed, len(original))
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if !bytes.Equal(original, decompressed) {
				t.Errorf("%s round trip mismatch", algo)
			}
		})
	}
}

func TestCompressors_WrongSize(t *testing.T) {
	for _, algo := range []Algorithm{Zlib, Lzma, LZ4} {
		compressor, _ := GetCompressor(algo)
		original := sampleData(1024)
		compressed, err := compressor.Compress(original)
		if err != nil {
			t.Fatalf("Compress failed: %v", err)
		}

		if _, err := compressor.Decompress(compressed, len(original)+10); err == nil {
			t.Errorf("%s: expected error for oversized target", algo)
		}
		if _, err := compressor.Decompress(compressed, len(original)-10); err == nil {
			t.Errorf("%s: expected error for undersized target", algo)
		}
	}
}

func TestLZ4Compressor_Incompressible(t *testing.T) {
	compressor := NewLZ4Compressor()
	_, err := compressor.Compress([]byte{1, 2, 3})
	if !errors.Is(err, ErrIncompressible) {
		t.Errorf("Expected ErrIncompressible, got %v", err)
	}
}

func TestGetCompressor_Unsupported(t *testing.T) {
	unsupported := []Algorithm{Old, Algorithm(99)}

	for _, algo := range unsupported {
		_, err := GetCompressor(algo)
		var unsupportedErr *UnsupportedCompressionError
		if !errors.As(err, &unsupportedErr) {
			t.Errorf("Expected UnsupportedCompressionError for algorithm %d, got %v", algo, err)
			continue
		}
		if unsupportedErr.Algorithm != algo {
			t.Errorf("Expected algorithm %d in error, got %d", algo, unsupportedErr.Algorithm)
		}
	}
}

func TestAlgorithmConstants(t *testing.T) {
	expected := map[Algorithm]uint8{None: 0, Zlib: 1, Lzma: 2, Old: 3, LZ4: 4}
	for algo, id := range expected {
		if uint8(algo) != id {
			t.Errorf("Expected %s=%d, got %d", algo, id, uint8(algo))
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name    string
		want    Algorithm
		wantErr bool
	}{
		{name: "", want: None},
		{name: "none", want: None},
		{name: "ZLIB", want: Zlib},
		{name: "lzma", want: Lzma},
		{name: "old", want: Old},
		{name: " lz4 ", want: LZ4},
		{name: "snappy", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAlgorithm(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseAlgorithm(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func BenchmarkZlibDecompress(b *testing.B) {
	compressor := NewZlibCompressor()
	data := sampleData(64 * 1024)
	compressed, _ := compressor.Compress(data)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compressor.Decompress(compressed, len(data))
	}
}

func BenchmarkLZ4Decompress(b *testing.B) {
	compressor := NewLZ4Compressor()
	data := sampleData(64 * 1024)
	compressed, _ := compressor.Compress(data)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compressor.Decompress(compressed, len(data))
	}
}

package codec

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/soltixdb/roly/internal/layout"
)

// WriteFile encodes d and writes it to path atomically
func WriteFile(path string, d *layout.Dataset) error {
	data, err := EncodeDataset(d)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename metadata: %w", err)
	}
	return nil
}

// Mapped is a dataset backed by a memory mapped metadata file. Close
// releases the mapping; the dataset must not be used afterwards.
type Mapped struct {
	*layout.Dataset
	data  []byte
	unmap func([]byte) error
}

// Close releases the mapping
func (m *Mapped) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	return m.unmap(data)
}

// OpenFile maps the metadata file at path and decodes it lazily
func OpenFile(path string) (*Mapped, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() < int64(len(Magic)) {
		return nil, fmt.Errorf("%s: %w", path, ErrBadMagic)
	}

	data, unmap, err := mapFile(f, int(info.Size()))
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}
	d, err := DecodeDataset(data)
	if err != nil {
		_ = unmap(data)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Mapped{Dataset: d, data: data, unmap: unmap}, nil
}

// ReadFile reads and decodes the metadata file at path into memory
func ReadFile(path string) (*layout.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := DecodeDataset(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

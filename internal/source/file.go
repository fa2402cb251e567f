package source

import (
	"context"
	"fmt"
	"io"
	"os"
)

// FileEngine serves local files with pread, or through a read-only memory
// map when UseMmap is set
type FileEngine struct {
	UseMmap bool
}

var _ Engine = (*FileEngine)(nil)

// NewFileEngine creates a file engine
func NewFileEngine(useMmap bool) *FileEngine {
	return &FileEngine{UseMmap: useMmap}
}

func (e *FileEngine) Open(_ context.Context, u *URI) (Reader, error) {
	f, err := os.Open(u.Filepath())
	if err != nil {
		return nil, wrapFileError(u, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, wrapFileError(u, err)
	}
	if !e.UseMmap || info.Size() == 0 {
		return &fileReader{File: f, size: info.Size()}, nil
	}

	data, err := mapFile(f, int(info.Size()))
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", u, err)
	}
	return &mappedReader{data: data}, nil
}

func (e *FileEngine) List(_ context.Context, u *URI) ([]Info, error) {
	entries, err := os.ReadDir(u.Filepath())
	if err != nil {
		return nil, wrapFileError(u, err)
	}
	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		infos = append(infos, Info{Name: entry.Name(), Size: info.Size()})
	}
	return infos, nil
}

func wrapFileError(u *URI, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	return err
}

type fileReader struct {
	*os.File
	size int64
}

func (r *fileReader) Size() int64 { return r.size }

type mappedReader struct {
	data []byte
}

func (r *mappedReader) Size() int64 { return int64(len(r.data)) }

func (r *mappedReader) ReadAt(p []byte, off int64) (int, error) {
	if r.data == nil {
		return 0, os.ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *mappedReader) Close() error {
	if r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	return unmapFile(data)
}

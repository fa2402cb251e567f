// Package deliver reads a range of entries of one column out of the data
// files a dataset describes.
package deliver

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soltixdb/roly/internal/compression"
	"github.com/soltixdb/roly/internal/interp"
	"github.com/soltixdb/roly/internal/layout"
	"github.com/soltixdb/roly/internal/logging"
	"github.com/soltixdb/roly/internal/source"
)

// Options tunes an Engine
type Options struct {
	// Concurrency bounds the baskets fetched at once. Zero means one per
	// touched basket.
	Concurrency int

	// VerifyChecksums checks the checksum stored in front of lz4 pages
	VerifyChecksums bool
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{Concurrency: 8}
}

// Engine resolves and decodes column reads. It holds no per-read state and
// is safe for concurrent use.
type Engine struct {
	opener   source.Opener
	registry *interp.Registry
	logger   *logging.Logger
	opts     Options
}

// NewEngine creates an engine that opens data files through opener and
// builds object values with constructors from registry
func NewEngine(opener source.Opener, registry *interp.Registry, logger *logging.Logger, opts Options) *Engine {
	if registry == nil {
		registry = interp.DefaultRegistry()
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &Engine{opener: opener, registry: registry, logger: logger, opts: opts}
}

// Array returns entries [start, stop) of column as the value the column's
// interpretation produces. Negative indices count from the end.
func (e *Engine) Array(ctx context.Context, ds *layout.Dataset, column string, start, stop int64) (any, error) {
	plan, err := Resolve(ds, column, start, stop)
	if err != nil {
		return nil, err
	}
	col, err := ds.Column(plan.ColumnIndex)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, plan, col)
}

// basketJob is one touched basket with the positions it fills
type basketJob struct {
	file   *FilePlan
	basket *BasketPlan
	src    interp.Source
}

// Execute reads the baskets of plan and decodes them with col's
// interpretation
func (e *Engine) Execute(ctx context.Context, plan *Plan, col layout.Column) (any, error) {
	began := time.Now()
	capability, err := interp.NewCapability(col.Interpretation, e.registry)
	if err != nil {
		return nil, err
	}
	if err := checkCompression(plan); err != nil {
		return nil, err
	}

	jobs := make([]basketJob, 0, plan.NumBaskets())
	for i := range plan.Files {
		fp := &plan.Files[i]
		for j := range fp.Baskets {
			jobs = append(jobs, basketJob{file: fp, basket: &fp.Baskets[j]})
		}
	}

	// item and entry positions assume every basket is read whole
	itemOffsets := make([]int, len(jobs)+1)
	entryOffsets := make([]int, len(jobs)+1)
	for i, job := range jobs {
		b := job.basket
		itemOffsets[i+1] = itemOffsets[i] + capability.NumItems(int(b.DataBytes()), int(b.NumEntries()))
		entryOffsets[i+1] = entryOffsets[i] + int(b.NumEntries())
	}

	if err := e.fetch(ctx, capability, jobs); err != nil {
		return nil, err
	}

	dst := capability.Destination(itemOffsets[len(jobs)], entryOffsets[len(jobs)])
	last := len(jobs) - 1
	for i, job := range jobs {
		gotItems := capability.SourceNumItems(job.src)
		gotEntries := int(job.basket.LocalStop - job.basket.LocalStart)
		if slot := itemOffsets[i+1] - itemOffsets[i]; gotItems > slot {
			return nil, e.corrupt(job, fmt.Sprintf("basket holds %d items, geometry allows %d", gotItems, slot))
		}

		// the first and last baskets may be read in part; shrink their
		// slots to what the source holds
		if i == last {
			itemOffsets[i+1] = itemOffsets[i] + gotItems
			entryOffsets[i+1] = entryOffsets[i] + gotEntries
		}
		if i == 0 {
			itemOffsets[i] = itemOffsets[i+1] - gotItems
			entryOffsets[i] = entryOffsets[i+1] - gotEntries
		}
		if err := capability.Fill(job.src, dst, itemOffsets[i], itemOffsets[i+1], entryOffsets[i], entryOffsets[i+1]); err != nil {
			return nil, e.corrupt(job, err.Error())
		}
		jobs[i].src = nil
	}

	clipped := capability.Clip(dst, itemOffsets[0], itemOffsets[len(jobs)], entryOffsets[0], entryOffsets[len(jobs)])
	out, err := capability.Finalize(clipped)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Delivered column range",
		"column", plan.Column,
		"start", plan.Start,
		"stop", plan.Stop,
		"files", len(plan.Files),
		"baskets", len(jobs),
		"duration", time.Since(began).String())
	return out, nil
}

// checkCompression rejects reads that span branches with different codecs
func checkCompression(plan *Plan) error {
	codec := compression.None
	for _, fp := range plan.Files {
		if len(fp.Baskets) == 0 {
			continue
		}
		c := fp.Branch.Compression()
		if c == compression.None {
			continue
		}
		if codec != compression.None && c != codec {
			return &InconsistentCompressionError{Location: fp.Location, Expected: codec, Found: c}
		}
		codec = c
	}
	return nil
}

// fetch reads and decodes every basket. Each file is opened once per read
// and baskets are fetched concurrently.
func (e *Engine) fetch(ctx context.Context, capability interp.Capability, jobs []basketJob) error {
	if len(jobs) == 0 {
		return nil
	}

	readers := make(map[*FilePlan]source.Reader)
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()
	for _, job := range jobs {
		if _, ok := readers[job.file]; ok {
			continue
		}
		r, err := e.opener.Open(ctx, job.file.Location)
		if err != nil {
			return fmt.Errorf("open %s: %w", job.file.Location, err)
		}
		readers[job.file] = r
		e.logger.Debug("Opened data file", "location", job.file.Location, "baskets", len(job.file.Baskets))
	}

	g, ctx := errgroup.WithContext(ctx)
	if e.opts.Concurrency > 0 {
		g.SetLimit(e.opts.Concurrency)
	}
	for i := range jobs {
		job := &jobs[i]
		r := readers[job.file]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := e.readBasket(r, job)
			if err != nil {
				return err
			}
			payload, offsets, err := splitBasket(data, job.basket.Basket)
			if err != nil {
				return e.corrupt(*job, err.Error())
			}
			src, err := capability.FromBasket(payload, offsets, int(job.basket.LocalStart), int(job.basket.LocalStop))
			if err != nil {
				return e.corrupt(*job, err.Error())
			}
			job.src = src
			return nil
		})
	}
	return g.Wait()
}

func (e *Engine) corrupt(job basketJob, reason string) error {
	return &CorruptBasketError{Location: job.file.Location, Basket: job.basket.Index, Reason: reason}
}

// readBasket reads and decompresses the pages of one basket into a buffer
// of the basket's uncompressed size
func (e *Engine) readBasket(r io.ReaderAt, job *basketJob) ([]byte, error) {
	branch := job.file.Branch
	codec := branch.Compression()
	b := job.basket

	headerSize := uint64(compression.ChunkHeaderSize)
	if codec == compression.LZ4 {
		headerSize += compression.LZ4ChecksumSize
	}

	out := make([]byte, b.UncompressedBytes)
	pos := 0
	var prevEnd uint64
	prevFramed := false
	for p := b.PageStart; p < b.PageStop; p++ {
		page := branch.Page(p)
		dst := out[pos : pos+int(page.UncompressedBytes)]
		pos += len(dst)

		if !page.IsCompressed() {
			if err := readFull(r, dst, page.FileSeek); err != nil {
				return nil, e.corrupt(*job, fmt.Sprintf("page %d: %v", p, err))
			}
			prevFramed = false
			continue
		}

		if page.FileSeek < headerSize {
			return nil, e.corrupt(*job, fmt.Sprintf("page %d starts at %d, before its chunk header", p, page.FileSeek))
		}
		chunkStart := page.FileSeek - headerSize
		if prevFramed && chunkStart != prevEnd {
			return nil, e.corrupt(*job, fmt.Sprintf("page %d chunk starts at %d, previous chunk ends at %d", p, chunkStart, prevEnd))
		}
		prevEnd = page.FileSeek + uint64(page.CompressedBytes)
		prevFramed = true

		chunk := make([]byte, headerSize+uint64(page.CompressedBytes))
		if err := readFull(r, chunk, chunkStart); err != nil {
			return nil, e.corrupt(*job, fmt.Sprintf("page %d: %v", p, err))
		}
		if err := e.checkChunk(job, p, chunk, page); err != nil {
			return nil, err
		}

		c, err := compression.GetCompressor(codec)
		if err != nil {
			return nil, err
		}
		raw, err := c.Decompress(chunk[headerSize:], int(page.UncompressedBytes))
		if err != nil {
			return nil, e.corrupt(*job, fmt.Sprintf("page %d: %v", p, err))
		}
		copy(dst, raw)
	}
	return out, nil
}

// checkChunk compares a chunk header with the page geometry recorded for it
func (e *Engine) checkChunk(job *basketJob, p int, chunk []byte, page layout.Page) error {
	codec := job.file.Branch.Compression()
	header, err := compression.ParseChunkHeader(chunk)
	if err != nil {
		return e.corrupt(*job, fmt.Sprintf("page %d: %v", p, err))
	}
	if header.Algorithm != codec {
		return &InconsistentCompressionError{Location: job.file.Location, Expected: codec, Found: header.Algorithm}
	}

	declared := int(page.CompressedBytes)
	if codec == compression.LZ4 {
		declared += compression.LZ4ChecksumSize
	}
	if header.CompressedSize != declared || header.UncompressedSize != int(page.UncompressedBytes) {
		return e.corrupt(*job, fmt.Sprintf("page %d header declares %d/%d bytes, geometry has %d/%d",
			p, header.CompressedSize, header.UncompressedSize, declared, page.UncompressedBytes))
	}

	if codec == compression.LZ4 && e.opts.VerifyChecksums {
		stored := binary.BigEndian.Uint64(chunk[compression.ChunkHeaderSize:])
		if sum := compression.LZ4Checksum(chunk[compression.ChunkHeaderSize+compression.LZ4ChecksumSize:]); sum != stored {
			return e.corrupt(*job, fmt.Sprintf("page %d checksum %016x, stored %016x", p, sum, stored))
		}
	}
	return nil
}

func readFull(r io.ReaderAt, buf []byte, off uint64) error {
	n, err := r.ReadAt(buf, int64(off))
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// splitBasket separates basket bytes into payload and entry offset table.
// The table is stored after the data border as big-endian int32 values
// relative to the basket key, between a 4-byte count and a 4-byte
// trailer. Offsets are returned relative to the payload for the basket's
// entries only, with a final entry at the border.
func splitBasket(data []byte, b layout.Basket) ([]byte, []int32, error) {
	if !b.HasOffsetTable() {
		return data, nil, nil
	}
	border := int(b.DataBorder)
	lo, hi := border+4, len(data)-4
	if lo > hi || (hi-lo)%4 != 0 {
		return nil, nil, fmt.Errorf("offset table [%d, %d) is malformed", lo, hi)
	}
	n := (hi - lo) / 4
	if uint64(n) < b.NumEntries() {
		return nil, nil, fmt.Errorf("offset table has %d entries, basket has %d", n, b.NumEntries())
	}

	entries := int(b.NumEntries())
	keylen := int32(b.Keylen)
	offsets := make([]int32, entries+1)
	for i := 0; i < entries; i++ {
		offsets[i] = int32(binary.BigEndian.Uint32(data[lo+4*i:])) - keylen
	}
	offsets[entries] = int32(border)
	return data[:border], offsets, nil
}

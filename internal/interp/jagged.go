package interp

import (
	"encoding/binary"
	"fmt"
	"math"
)

// double32Cap reads truncated doubles
type double32Cap struct {
	low, high float64
	numBits   uint32
	width     int
	toDims    []uint32
}

func newDouble32Cap(d *Double32) (*double32Cap, error) {
	if d.NumBits > 32 {
		return nil, fmt.Errorf("double32: numbits %d exceeds 32", d.NumBits)
	}
	from := Primitive{DType: Float32, Dims: d.FromDims}
	toDims := d.ToDims
	if len(toDims) == 0 {
		toDims = d.FromDims
	}
	if from.NumElements() != (Primitive{Dims: toDims}).NumElements() {
		return nil, fmt.Errorf("double32: cannot reshape %s to %s", dimsIdentifier(d.FromDims), dimsIdentifier(toDims))
	}
	return &double32Cap{low: d.Low, high: d.High, numBits: d.NumBits, width: from.NumElements(), toDims: toDims}, nil
}

func (c *double32Cap) itemSize() int {
	return 4 * c.width
}

func (c *double32Cap) NumItems(numBytes, numEntries int) int {
	return numBytes / c.itemSize()
}

func (c *double32Cap) Destination(numItems, numEntries int) Destination {
	shape := append([]int{numItems}, dimsInts(c.toDims)...)
	return &Array{DType: Float64, Shape: shape, Values: make([]float64, numItems*c.width)}
}

func (c *double32Cap) FromBasket(data []byte, offsets []int32, entryStart, entryStop int) (Source, error) {
	return fixedBytes(data, offsets, entryStart, entryStop, c.itemSize())
}

func (c *double32Cap) SourceNumItems(src Source) int {
	return len(src.([]byte)) / c.itemSize()
}

func (c *double32Cap) Fill(src Source, dst Destination, itemStart, itemStop, entryStart, entryStop int) error {
	raw := src.([]byte)
	if err := checkSpan("items", c.SourceNumItems(src), itemStart, itemStop); err != nil {
		return err
	}
	values := dst.(*Array).Values.([]float64)
	scale := (c.high - c.low) / float64(uint64(1)<<c.numBits)
	base := itemStart * c.width
	for e := 0; e < len(raw)/4; e++ {
		word := binary.BigEndian.Uint32(raw[4*e:])
		if c.numBits == 0 {
			values[base+e] = float64(math.Float32frombits(word))
		} else {
			values[base+e] = c.low + float64(word)*scale
		}
	}
	return nil
}

func (c *double32Cap) Clip(dst Destination, itemStart, itemStop, entryStart, entryStop int) Destination {
	arr := dst.(*Array)
	shape := append([]int{itemStop - itemStart}, arr.Shape[1:]...)
	return &Array{DType: Float64, Shape: shape, Values: arr.Values.([]float64)[itemStart*c.width : itemStop*c.width]}
}

func (c *double32Cap) Finalize(dst Destination) (any, error) {
	return dst.(*Array), nil
}

// jaggedCap reads variable-length lists of fixed-width content. Entry
// boundaries come from the basket's offset table.
type jaggedCap struct {
	content fixedWidth
	skip    int
}

type jaggedSource struct {
	content Source
	counts  []int
}

type jaggedDest struct {
	content Destination
	counts  []int
}

func (c *jaggedCap) NumItems(numBytes, numEntries int) int {
	n := numBytes - numEntries*c.skip
	if n < 0 {
		n = 0
	}
	return c.content.NumItems(n, numEntries)
}

func (c *jaggedCap) Destination(numItems, numEntries int) Destination {
	return &jaggedDest{content: c.content.Destination(numItems, numItems), counts: make([]int, numEntries)}
}

func (c *jaggedCap) FromBasket(data []byte, offsets []int32, entryStart, entryStop int) (Source, error) {
	if offsets == nil {
		return nil, fmt.Errorf("jagged: basket has no offset table")
	}
	if entryStart < 0 || entryStop < entryStart || entryStop >= len(offsets) {
		return nil, fmt.Errorf("jagged: entry range [%d, %d) outside offset table of %d entries", entryStart, entryStop, len(offsets)-1)
	}

	size := c.content.itemSize()
	counts := make([]int, entryStop-entryStart)
	var packed []byte
	for i := entryStart; i < entryStop; i++ {
		lo, hi := int(offsets[i])+c.skip, int(offsets[i+1])
		if int(offsets[i]) < 0 || lo > hi || hi > len(data) {
			return nil, fmt.Errorf("jagged: entry %d spans [%d, %d) in %d bytes", i, lo, hi, len(data))
		}
		if (hi-lo)%size != 0 {
			return nil, fmt.Errorf("jagged: entry %d has %d bytes, not a multiple of %d", i, hi-lo, size)
		}
		counts[i-entryStart] = (hi - lo) / size
		packed = append(packed, data[lo:hi]...)
	}

	content, err := c.content.FromBasket(packed, nil, 0, len(packed)/size)
	if err != nil {
		return nil, err
	}
	return &jaggedSource{content: content, counts: counts}, nil
}

func (c *jaggedCap) SourceNumItems(src Source) int {
	return c.content.SourceNumItems(src.(*jaggedSource).content)
}

func (c *jaggedCap) Fill(src Source, dst Destination, itemStart, itemStop, entryStart, entryStop int) error {
	s, d := src.(*jaggedSource), dst.(*jaggedDest)
	if err := checkSpan("entries", len(s.counts), entryStart, entryStop); err != nil {
		return err
	}
	if err := c.content.Fill(s.content, d.content, itemStart, itemStop, itemStart, itemStop); err != nil {
		return err
	}
	copy(d.counts[entryStart:entryStop], s.counts)
	return nil
}

func (c *jaggedCap) Clip(dst Destination, itemStart, itemStop, entryStart, entryStop int) Destination {
	d := dst.(*jaggedDest)
	return &jaggedDest{
		content: c.content.Clip(d.content, itemStart, itemStop, itemStart, itemStop),
		counts:  d.counts[entryStart:entryStop],
	}
}

func (c *jaggedCap) Finalize(dst Destination) (any, error) {
	d := dst.(*jaggedDest)
	content, err := c.content.Finalize(d.content)
	if err != nil {
		return nil, err
	}
	offsets := make([]int64, len(d.counts)+1)
	for i, n := range d.counts {
		offsets[i+1] = offsets[i] + int64(n)
	}
	return &JaggedArray{Offsets: offsets, Content: content}, nil
}

// stringCap reads byte strings as jagged uint8 content
type stringCap struct {
	jaggedCap
}

func (c *stringCap) Finalize(dst Destination) (any, error) {
	d := dst.(*jaggedDest)
	raw := d.content.(*Array).Values.([]uint8)
	out := make([]string, len(d.counts))
	pos := 0
	for i, n := range d.counts {
		out[i] = string(raw[pos : pos+n])
		pos += n
	}
	return out, nil
}

// tableObjCap builds one object per record
type tableObjCap struct {
	*recordCap
	ctor ValueConstructor
}

func newTableObjCap(t *TableObj, reg *Registry) (*tableObjCap, error) {
	rec, ok := t.Content.(*Record)
	if !ok {
		return nil, fmt.Errorf("tableobj: content must be a record, got %T", t.Content)
	}
	content, err := newRecordCap(rec)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, &UnknownQualnameError{Qualname: t.QualnameString()}
	}
	ctor, err := reg.Lookup(t.Qualname)
	if err != nil {
		return nil, err
	}
	return &tableObjCap{recordCap: content, ctor: ctor}, nil
}

func (c *tableObjCap) Finalize(dst Destination) (any, error) {
	rec := dst.(*RecordArray)
	out := make([]any, rec.Len())
	for i := range out {
		v, err := c.ctor(rec.Row(i))
		if err != nil {
			return nil, fmt.Errorf("tableobj: entry %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

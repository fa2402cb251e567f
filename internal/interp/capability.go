package interp

import (
	"fmt"
)

// Source is the decoded contribution of one basket
type Source any

// Destination accumulates the contributions of all baskets of one read
type Destination any

// Capability decodes basket bytes for one interpretation. A read sizes a
// Destination from the sum of NumItems over all baskets, fills each
// basket's Source at precomputed item and entry positions, then clips
// and finalizes the result.
type Capability interface {
	// NumItems estimates the items a whole basket of numBytes data bytes
	// and numEntries entries contributes
	NumItems(numBytes, numEntries int) int

	// Destination allocates room for numItems items and numEntries entries
	Destination(numItems, numEntries int) Destination

	// FromBasket decodes entries [entryStart, entryStop) of one basket.
	// offsets is the data-relative per-entry byte offset table, or nil.
	FromBasket(data []byte, offsets []int32, entryStart, entryStop int) (Source, error)

	// SourceNumItems returns the items src holds
	SourceNumItems(src Source) int

	// Fill copies src into dst at the given item and entry positions
	Fill(src Source, dst Destination, itemStart, itemStop, entryStart, entryStop int) error

	// Clip restricts dst to the given item and entry range
	Clip(dst Destination, itemStart, itemStop, entryStart, entryStop int) Destination

	// Finalize converts dst to the caller-facing value
	Finalize(dst Destination) (any, error)
}

// fixedWidth is a Capability whose entries are single items of a fixed
// byte width.
type fixedWidth interface {
	Capability
	itemSize() int
}

// NewCapability builds the Capability for desc. Constructors for TableObj
// values are looked up in reg.
func NewCapability(desc Interpretation, reg *Registry) (Capability, error) {
	switch d := desc.(type) {
	case *Flat:
		return newFlatCap(d.From, d.To)
	case *Record:
		return newRecordCap(d)
	case *Double32:
		return newDouble32Cap(d)
	case *STLBitSet:
		if d.NumBytes == 0 {
			return nil, fmt.Errorf("stlbitset: numbytes must be positive")
		}
		p := Primitive{DType: Bool, Dims: []uint32{d.NumBytes}}
		return newFlatCap(p, p)
	case *Jagged:
		content, err := NewCapability(d.Content, reg)
		if err != nil {
			return nil, err
		}
		fixed, ok := content.(fixedWidth)
		if !ok {
			return nil, fmt.Errorf("jagged: content %s is not fixed width", d.Content.Identifier())
		}
		return &jaggedCap{content: fixed, skip: int(d.SkipBytes)}, nil
	case *String:
		content, err := newFlatCap(Primitive{DType: Uint8}, Primitive{DType: Uint8})
		if err != nil {
			return nil, err
		}
		return &stringCap{jaggedCap{content: content, skip: int(d.SkipBytes)}}, nil
	case *TableObj:
		return newTableObjCap(d, reg)
	case nil:
		return nil, fmt.Errorf("nil interpretation")
	default:
		return nil, fmt.Errorf("unsupported interpretation %T", desc)
	}
}

// fixedBytes extracts the bytes of entries [entryStart, entryStop). With an
// offset table each entry contributes its trailing size bytes.
func fixedBytes(data []byte, offsets []int32, entryStart, entryStop, size int) ([]byte, error) {
	if entryStart < 0 || entryStop < entryStart {
		return nil, fmt.Errorf("invalid entry range [%d, %d)", entryStart, entryStop)
	}
	if offsets == nil {
		lo, hi := entryStart*size, entryStop*size
		if hi > len(data) {
			return nil, fmt.Errorf("entries [%d, %d) need %d bytes, basket has %d", entryStart, entryStop, hi, len(data))
		}
		return data[lo:hi], nil
	}

	if entryStop >= len(offsets) {
		return nil, fmt.Errorf("offset table has %d entries, need %d", len(offsets)-1, entryStop)
	}
	out := make([]byte, 0, (entryStop-entryStart)*size)
	for i := entryStart; i < entryStop; i++ {
		lo, hi := int(offsets[i]), int(offsets[i+1])
		if lo < 0 || hi > len(data) || hi-lo < size {
			return nil, fmt.Errorf("entry %d spans [%d, %d), need %d of %d bytes", i, lo, hi, size, len(data))
		}
		out = append(out, data[hi-size:hi]...)
	}
	return out, nil
}

func checkSpan(what string, got, start, stop int) error {
	if stop-start != got {
		return fmt.Errorf("%s: source has %d, destination range [%d, %d) has %d", what, got, start, stop, stop-start)
	}
	return nil
}

// flatCap converts fixed-width primitive values
type flatCap struct {
	from, to Primitive
	width    int
}

func newFlatCap(from, to Primitive) (*flatCap, error) {
	if !from.DType.Valid() || !to.DType.Valid() {
		return nil, fmt.Errorf("flat: invalid dtype %s -> %s", from.DType, to.DType)
	}
	if from.NumElements() != to.NumElements() {
		return nil, fmt.Errorf("flat: cannot reshape %s to %s", dimsIdentifier(from.Dims), dimsIdentifier(to.Dims))
	}
	if from.ItemSize() == 0 {
		return nil, fmt.Errorf("flat: zero-width item")
	}
	return &flatCap{from: from, to: to, width: from.NumElements()}, nil
}

func (c *flatCap) itemSize() int {
	return c.from.ItemSize()
}

func (c *flatCap) NumItems(numBytes, numEntries int) int {
	return numBytes / c.itemSize()
}

func (c *flatCap) Destination(numItems, numEntries int) Destination {
	return c.newArray(numItems)
}

func (c *flatCap) newArray(n int) *Array {
	shape := append([]int{n}, dimsInts(c.to.Dims)...)
	return &Array{DType: c.to.DType, Shape: shape, Values: makeValues(c.to.DType, n*c.width)}
}

func dimsInts(dims []uint32) []int {
	out := make([]int, len(dims))
	for i, d := range dims {
		out[i] = int(d)
	}
	return out
}

func (c *flatCap) FromBasket(data []byte, offsets []int32, entryStart, entryStop int) (Source, error) {
	return fixedBytes(data, offsets, entryStart, entryStop, c.itemSize())
}

func (c *flatCap) SourceNumItems(src Source) int {
	return len(src.([]byte)) / c.itemSize()
}

func (c *flatCap) Fill(src Source, dst Destination, itemStart, itemStop, entryStart, entryStop int) error {
	raw := src.([]byte)
	if err := checkSpan("items", c.SourceNumItems(src), itemStart, itemStop); err != nil {
		return err
	}
	arr := dst.(*Array)
	convert(arr.Values, itemStart*c.width, raw, c.from, c.itemSize(), 0, itemStop-itemStart)
	return nil
}

// convert decodes n items of p at byte offset off within each stride-wide
// item of raw, storing their elements from values[start].
func convert(values any, start int, raw []byte, p Primitive, stride, off, n int) {
	order := byteOrder(p.BigEndian)
	size := p.DType.Size()
	width := p.NumElements()
	for k := 0; k < n; k++ {
		base := k*stride + off
		for e := 0; e < width; e++ {
			pos := base + e*size
			putScalar(values, start+k*width+e, readScalar(raw[pos:pos+size], p.DType, order))
		}
	}
}

func (c *flatCap) Clip(dst Destination, itemStart, itemStop, entryStart, entryStop int) Destination {
	arr := dst.(*Array)
	shape := append([]int{itemStop - itemStart}, arr.Shape[1:]...)
	return &Array{DType: arr.DType, Shape: shape, Values: sliceValues(arr.Values, itemStart*c.width, itemStop*c.width)}
}

func (c *flatCap) Finalize(dst Destination) (any, error) {
	return dst.(*Array), nil
}

// recordCap reads structs of scalar fields
type recordCap struct {
	names   []string
	from    []Primitive
	offsets []int
	to      []Primitive
	size    int
}

func newRecordCap(r *Record) (*recordCap, error) {
	if len(r.FromTypes) != len(r.FromNames) || len(r.ToTypes) != len(r.ToNames) {
		return nil, fmt.Errorf("record: %d types for %d names", len(r.FromTypes), len(r.FromNames))
	}
	if len(r.FromTypes) == 0 {
		return nil, fmt.Errorf("record: no fields")
	}

	fieldOffsets := make(map[string]int, len(r.FromNames))
	fieldIndex := make(map[string]int, len(r.FromNames))
	size := 0
	for i, p := range r.FromTypes {
		if !p.DType.Valid() {
			return nil, fmt.Errorf("record: field %s has invalid dtype", r.FromNames[i])
		}
		fieldOffsets[r.FromNames[i]] = size
		fieldIndex[r.FromNames[i]] = i
		size += p.ItemSize()
	}

	c := &recordCap{size: size}
	toNames, toTypes := r.ToNames, r.ToTypes
	if len(toTypes) == 0 {
		toNames = r.FromNames
		toTypes = make([]Primitive, len(r.FromTypes))
		for i, p := range r.FromTypes {
			toTypes[i] = Primitive{DType: p.DType, Dims: p.Dims}
		}
	}
	for i, name := range toNames {
		idx, ok := fieldIndex[name]
		if !ok {
			return nil, fmt.Errorf("record: no source field named %s", name)
		}
		if !toTypes[i].DType.Valid() || toTypes[i].NumElements() != r.FromTypes[idx].NumElements() {
			return nil, fmt.Errorf("record: cannot convert field %s", name)
		}
		c.names = append(c.names, name)
		c.from = append(c.from, r.FromTypes[idx])
		c.offsets = append(c.offsets, fieldOffsets[name])
		c.to = append(c.to, toTypes[i])
	}
	return c, nil
}

func (c *recordCap) itemSize() int {
	return c.size
}

func (c *recordCap) NumItems(numBytes, numEntries int) int {
	return numBytes / c.size
}

func (c *recordCap) Destination(numItems, numEntries int) Destination {
	rec := &RecordArray{Names: c.names, Length: numItems}
	for _, p := range c.to {
		shape := append([]int{numItems}, dimsInts(p.Dims)...)
		rec.Fields = append(rec.Fields, &Array{DType: p.DType, Shape: shape, Values: makeValues(p.DType, numItems*p.NumElements())})
	}
	return rec
}

func (c *recordCap) FromBasket(data []byte, offsets []int32, entryStart, entryStop int) (Source, error) {
	return fixedBytes(data, offsets, entryStart, entryStop, c.size)
}

func (c *recordCap) SourceNumItems(src Source) int {
	return len(src.([]byte)) / c.size
}

func (c *recordCap) Fill(src Source, dst Destination, itemStart, itemStop, entryStart, entryStop int) error {
	raw := src.([]byte)
	if err := checkSpan("items", c.SourceNumItems(src), itemStart, itemStop); err != nil {
		return err
	}
	rec := dst.(*RecordArray)
	for k := range c.names {
		convert(rec.Fields[k].Values, itemStart*c.from[k].NumElements(), raw, c.from[k], c.size, c.offsets[k], itemStop-itemStart)
	}
	return nil
}

func (c *recordCap) Clip(dst Destination, itemStart, itemStop, entryStart, entryStop int) Destination {
	rec := dst.(*RecordArray)
	out := &RecordArray{Names: rec.Names, Length: itemStop - itemStart}
	for k, f := range rec.Fields {
		w := c.to[k].NumElements()
		shape := append([]int{itemStop - itemStart}, f.Shape[1:]...)
		out.Fields = append(out.Fields, &Array{DType: f.DType, Shape: shape, Values: sliceValues(f.Values, itemStart*w, itemStop*w)})
	}
	return out
}

func (c *recordCap) Finalize(dst Destination) (any, error) {
	return dst.(*RecordArray), nil
}

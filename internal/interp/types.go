// Package interp describes how the raw bytes of a column map to typed
// values. Descriptors form a closed set of variants; each can be turned
// into a Capability that decodes basket bytes.
package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// DType is a primitive element type. The numeric values are part of the
// metadata format.
type DType uint8

const (
	Bool DType = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

var dtypeCodes = [...]string{"b1", "i1", "i2", "i4", "i8", "u1", "u2", "u4", "u8", "f4", "f8"}
var dtypeSizes = [...]int{1, 1, 2, 4, 8, 1, 2, 4, 8, 4, 8}

// Valid reports whether d is a known dtype
func (d DType) Valid() bool {
	return int(d) < len(dtypeCodes)
}

// String returns the numpy-style type code, e.g. "f8"
func (d DType) String() string {
	if !d.Valid() {
		return fmt.Sprintf("dtype(%d)", uint8(d))
	}
	return dtypeCodes[d]
}

// Size returns the width of one element in bytes
func (d DType) Size() int {
	if !d.Valid() {
		return 0
	}
	return dtypeSizes[d]
}

// ParseDType parses a type code such as "f8" or ">i4"; a leading '>'
// selects big-endian and '<' or '=' little-endian.
func ParseDType(code string) (DType, bool, error) {
	bigEndian := false
	switch {
	case strings.HasPrefix(code, ">"):
		bigEndian = true
		code = code[1:]
	case strings.HasPrefix(code, "<"), strings.HasPrefix(code, "="):
		code = code[1:]
	}
	for i, c := range dtypeCodes {
		if c == code {
			return DType(i), bigEndian, nil
		}
	}
	return 0, false, fmt.Errorf("unknown dtype code: %q", code)
}

// Primitive is a dtype with byte order and an optional fixed shape.
// Empty Dims means a scalar.
type Primitive struct {
	DType     DType
	BigEndian bool
	Dims      []uint32
}

// NumElements returns the number of elements one value holds
func (p Primitive) NumElements() int {
	n := 1
	for _, d := range p.Dims {
		n *= int(d)
	}
	return n
}

// ItemSize returns the width of one value in bytes
func (p Primitive) ItemSize() int {
	return p.DType.Size() * p.NumElements()
}

func (p Primitive) identifier() string {
	order := "<"
	if p.BigEndian {
		order = ">"
	}
	return order + p.DType.String() + dimsIdentifier(p.Dims)
}

func dimsIdentifier(dims []uint32) string {
	if len(dims) == 0 {
		return ""
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.FormatUint(uint64(d), 10)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func tupleIdentifier(dims []uint32) string {
	if len(dims) == 0 {
		return "()"
	}
	return dimsIdentifier(dims)
}

func floatIdentifier(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Interpretation is implemented by *Flat, *Record, *Double32, *STLBitSet,
// *Jagged, *String and *TableObj.
type Interpretation interface {
	// Identifier is a stable string that is equal for equal descriptors
	Identifier() string
	isInterpretation()
}

// Equal compares two descriptors by identifier
func Equal(a, b Interpretation) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Identifier() == b.Identifier()
}

// Flat reads fixed-width values of one primitive type and converts them
// to another.
type Flat struct {
	From Primitive
	To   Primitive
}

// NewFlat returns a Flat that keeps the element type but converts to
// native order.
func NewFlat(from Primitive) *Flat {
	return &Flat{From: from, To: Primitive{DType: from.DType, Dims: from.Dims}}
}

func (f *Flat) Identifier() string {
	return "asdtype(" + f.From.identifier() + "," + f.To.identifier() + ")"
}

// Record reads fixed-width structs of named scalar fields
type Record struct {
	FromTypes []Primitive
	FromNames []string
	ToTypes   []Primitive
	ToNames   []string
}

func (r *Record) Identifier() string {
	return "asdtype(" + fieldsIdentifier(r.FromNames, r.FromTypes) + "," + fieldsIdentifier(r.ToNames, r.ToTypes) + ")"
}

func fieldsIdentifier(names []string, types []Primitive) string {
	parts := make([]string, len(types))
	for i, t := range types {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		parts[i] = "(" + strconv.Quote(name) + "," + t.identifier() + ")"
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Double32 reads ROOT's truncated doubles: big-endian integers of NumBits
// bits scaled into [Low, High]. NumBits of zero means plain big-endian
// float32 values.
type Double32 struct {
	Low      float64
	High     float64
	NumBits  uint32
	FromDims []uint32
	ToDims   []uint32
}

func (d *Double32) Identifier() string {
	return fmt.Sprintf("asdouble32(%s,%s,%d,%s,%s)", floatIdentifier(d.Low), floatIdentifier(d.High),
		d.NumBits, tupleIdentifier(d.FromDims), tupleIdentifier(d.ToDims))
}

// STLBitSet reads std::bitset values of NumBytes flags each
type STLBitSet struct {
	NumBytes uint32
}

func (s *STLBitSet) Identifier() string {
	return fmt.Sprintf("asstlbitset(%d)", s.NumBytes)
}

// Jagged reads variable-length lists of Content values. Each entry starts
// with SkipBytes bytes of header.
type Jagged struct {
	Content   Interpretation
	SkipBytes uint32
}

func (j *Jagged) Identifier() string {
	content := "<nil>"
	if j.Content != nil {
		content = j.Content.Identifier()
	}
	return fmt.Sprintf("asjagged(%s,%d)", content, j.SkipBytes)
}

// String reads variable-length byte strings
type String struct {
	SkipBytes uint32
}

func (s *String) Identifier() string {
	return fmt.Sprintf("asstring(%d)", s.SkipBytes)
}

// TableObj reads Content and builds one object per value with the
// constructor registered under Qualname.
type TableObj struct {
	Content  Interpretation
	Qualname []string
}

// QualnameString returns the qualname parts joined with dots, for
// messages. Distinct qualnames can share it.
func (t *TableObj) QualnameString() string {
	return qualnameString(t.Qualname)
}

func (t *TableObj) Identifier() string {
	content := "<nil>"
	if t.Content != nil {
		content = t.Content.Identifier()
	}
	return fmt.Sprintf("asobj(%s,%q)", content, t.Qualname)
}

func (*Flat) isInterpretation()      {}
func (*Record) isInterpretation()    {}
func (*Double32) isInterpretation()  {}
func (*STLBitSet) isInterpretation() {}
func (*Jagged) isInterpretation()    {}
func (*String) isInterpretation()    {}
func (*TableObj) isInterpretation()  {}

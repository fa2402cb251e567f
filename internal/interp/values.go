package interp

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Array is a dense row-major array. Values holds a []bool, []int8, ...,
// []float64 slice, matching DType, with the product of Shape elements.
// Shape[0] is the number of entries.
type Array struct {
	DType  DType `json:"dtype"`
	Shape  []int `json:"shape"`
	Values any   `json:"values"`
}

// Len returns the number of entries
func (a *Array) Len() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

func (a *Array) width() int {
	w := 1
	for _, d := range a.Shape[1:] {
		w *= d
	}
	return w
}

// At returns entry i: a scalar for one-dimensional arrays, otherwise the
// flattened slice of that entry's elements.
func (a *Array) At(i int) any {
	w := a.width()
	if len(a.Shape) == 1 {
		return valueAt(a.Values, i)
	}
	return sliceValues(a.Values, i*w, (i+1)*w)
}

// JaggedArray holds variable-length lists. Entry i spans
// Content[Offsets[i]:Offsets[i+1]].
type JaggedArray struct {
	Offsets []int64 `json:"offsets"`
	Content any     `json:"content"`
}

// Len returns the number of entries
func (j *JaggedArray) Len() int {
	return len(j.Offsets) - 1
}

// RecordArray holds one Array per field
type RecordArray struct {
	Names  []string `json:"names"`
	Fields []*Array `json:"fields"`
	Length int      `json:"length"`
}

// Len returns the number of entries
func (r *RecordArray) Len() int {
	return r.Length
}

// Row returns entry i as a field name to value map
func (r *RecordArray) Row(i int) map[string]any {
	row := make(map[string]any, len(r.Names))
	for k, name := range r.Names {
		row[name] = r.Fields[k].At(i)
	}
	return row
}

// MarshalText encodes the dtype as its type code
func (d DType) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid dtype %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText parses a type code such as "f8" or ">f8"
func (d *DType) UnmarshalText(text []byte) error {
	parsed, _, err := ParseDType(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type scalarKind uint8

const (
	kindInt scalarKind = iota
	kindUint
	kindFloat
)

// scalar carries one element between dtypes without losing 64-bit
// integer precision.
type scalar struct {
	kind scalarKind
	i    int64
	u    uint64
	f    float64
}

func byteOrder(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func readScalar(b []byte, dt DType, order binary.ByteOrder) scalar {
	switch dt {
	case Bool:
		if b[0] != 0 {
			return scalar{kind: kindUint, u: 1}
		}
		return scalar{kind: kindUint}
	case Int8:
		return scalar{kind: kindInt, i: int64(int8(b[0]))}
	case Int16:
		return scalar{kind: kindInt, i: int64(int16(order.Uint16(b)))}
	case Int32:
		return scalar{kind: kindInt, i: int64(int32(order.Uint32(b)))}
	case Int64:
		return scalar{kind: kindInt, i: int64(order.Uint64(b))}
	case Uint8:
		return scalar{kind: kindUint, u: uint64(b[0])}
	case Uint16:
		return scalar{kind: kindUint, u: uint64(order.Uint16(b))}
	case Uint32:
		return scalar{kind: kindUint, u: uint64(order.Uint32(b))}
	case Uint64:
		return scalar{kind: kindUint, u: order.Uint64(b)}
	case Float32:
		return scalar{kind: kindFloat, f: float64(math.Float32frombits(order.Uint32(b)))}
	default:
		return scalar{kind: kindFloat, f: math.Float64frombits(order.Uint64(b))}
	}
}

func (s scalar) asInt() int64 {
	switch s.kind {
	case kindUint:
		return int64(s.u)
	case kindFloat:
		return int64(s.f)
	}
	return s.i
}

func (s scalar) asUint() uint64 {
	switch s.kind {
	case kindInt:
		return uint64(s.i)
	case kindFloat:
		return uint64(s.f)
	}
	return s.u
}

func (s scalar) asFloat() float64 {
	switch s.kind {
	case kindInt:
		return float64(s.i)
	case kindUint:
		return float64(s.u)
	}
	return s.f
}

func (s scalar) asBool() bool {
	switch s.kind {
	case kindInt:
		return s.i != 0
	case kindUint:
		return s.u != 0
	}
	return s.f != 0
}

func makeValues(dt DType, n int) any {
	switch dt {
	case Bool:
		return make([]bool, n)
	case Int8:
		return make([]int8, n)
	case Int16:
		return make([]int16, n)
	case Int32:
		return make([]int32, n)
	case Int64:
		return make([]int64, n)
	case Uint8:
		return make([]uint8, n)
	case Uint16:
		return make([]uint16, n)
	case Uint32:
		return make([]uint32, n)
	case Uint64:
		return make([]uint64, n)
	case Float32:
		return make([]float32, n)
	default:
		return make([]float64, n)
	}
}

func putScalar(values any, i int, s scalar) {
	switch v := values.(type) {
	case []bool:
		v[i] = s.asBool()
	case []int8:
		v[i] = int8(s.asInt())
	case []int16:
		v[i] = int16(s.asInt())
	case []int32:
		v[i] = int32(s.asInt())
	case []int64:
		v[i] = s.asInt()
	case []uint8:
		v[i] = uint8(s.asUint())
	case []uint16:
		v[i] = uint16(s.asUint())
	case []uint32:
		v[i] = uint32(s.asUint())
	case []uint64:
		v[i] = s.asUint()
	case []float32:
		v[i] = float32(s.asFloat())
	case []float64:
		v[i] = s.asFloat()
	}
}

func sliceValues(values any, lo, hi int) any {
	switch v := values.(type) {
	case []bool:
		return v[lo:hi]
	case []int8:
		return v[lo:hi]
	case []int16:
		return v[lo:hi]
	case []int32:
		return v[lo:hi]
	case []int64:
		return v[lo:hi]
	case []uint8:
		return v[lo:hi]
	case []uint16:
		return v[lo:hi]
	case []uint32:
		return v[lo:hi]
	case []uint64:
		return v[lo:hi]
	case []float32:
		return v[lo:hi]
	case []float64:
		return v[lo:hi]
	}
	return nil
}

func valueAt(values any, i int) any {
	switch v := values.(type) {
	case []bool:
		return v[i]
	case []int8:
		return v[i]
	case []int16:
		return v[i]
	case []int32:
		return v[i]
	case []int64:
		return v[i]
	case []uint8:
		return v[i]
	case []uint16:
		return v[i]
	case []uint32:
		return v[i]
	case []uint64:
		return v[i]
	case []float32:
		return v[i]
	case []float64:
		return v[i]
	}
	return nil
}

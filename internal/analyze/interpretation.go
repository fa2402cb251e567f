package analyze

import (
	"fmt"

	"github.com/soltixdb/roly/internal/interp"
)

// Interpretation kinds accepted in manifests
const (
	KindFlat      = "flat"
	KindRecord    = "record"
	KindDouble32  = "double32"
	KindSTLBitSet = "stlbitset"
	KindJagged    = "jagged"
	KindString    = "string"
	KindTable     = "table"
)

// PrimitiveSpec is a dtype code such as ">f8" with an optional shape
type PrimitiveSpec struct {
	Type string   `json:"type"`
	Dims []uint32 `json:"dims,omitempty"`
}

// FieldSpec is one named field of a record
type FieldSpec struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// InterpretationSpec is the JSON form of an interpretation. Kind selects
// which of the other fields apply.
type InterpretationSpec struct {
	Kind string `json:"kind"`

	// flat
	From *PrimitiveSpec `json:"from,omitempty"`
	To   *PrimitiveSpec `json:"to,omitempty"`

	// record
	Fields []FieldSpec `json:"fields,omitempty"`

	// double32
	Low      float64  `json:"low,omitempty"`
	High     float64  `json:"high,omitempty"`
	NumBits  uint32   `json:"num_bits,omitempty"`
	FromDims []uint32 `json:"from_dims,omitempty"`
	ToDims   []uint32 `json:"to_dims,omitempty"`

	// stlbitset
	NumBytes uint32 `json:"num_bytes,omitempty"`

	// jagged, string
	SkipBytes uint32 `json:"skip_bytes,omitempty"`

	// jagged, table
	Content *InterpretationSpec `json:"content,omitempty"`

	// table
	Qualname []string `json:"qualname,omitempty"`
}

// Build converts s into an interpretation descriptor
func (s InterpretationSpec) Build() (interp.Interpretation, error) {
	switch s.Kind {
	case KindFlat:
		if s.From == nil {
			return nil, fmt.Errorf("flat interpretation needs from")
		}
		from, err := s.From.build()
		if err != nil {
			return nil, err
		}
		if s.To == nil {
			return interp.NewFlat(from), nil
		}
		to, err := s.To.build()
		if err != nil {
			return nil, err
		}
		return &interp.Flat{From: from, To: to}, nil

	case KindRecord:
		r, err := s.record()
		if err != nil {
			return nil, err
		}
		return r, nil

	case KindDouble32:
		return &interp.Double32{Low: s.Low, High: s.High, NumBits: s.NumBits, FromDims: s.FromDims, ToDims: s.ToDims}, nil

	case KindSTLBitSet:
		return &interp.STLBitSet{NumBytes: s.NumBytes}, nil

	case KindJagged:
		if s.Content == nil {
			return nil, fmt.Errorf("jagged interpretation needs content")
		}
		content, err := s.Content.Build()
		if err != nil {
			return nil, err
		}
		return &interp.Jagged{Content: content, SkipBytes: s.SkipBytes}, nil

	case KindString:
		return &interp.String{SkipBytes: s.SkipBytes}, nil

	case KindTable:
		if s.Content == nil || len(s.Qualname) == 0 {
			return nil, fmt.Errorf("table interpretation needs content and qualname")
		}
		content, err := s.Content.Build()
		if err != nil {
			return nil, err
		}
		return &interp.TableObj{Content: content, Qualname: s.Qualname}, nil
	}
	return nil, fmt.Errorf("unknown interpretation kind: %q", s.Kind)
}

func (s InterpretationSpec) record() (*interp.Record, error) {
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("record interpretation needs fields")
	}
	r := &interp.Record{
		FromTypes: make([]interp.Primitive, len(s.Fields)),
		FromNames: make([]string, len(s.Fields)),
		ToTypes:   make([]interp.Primitive, len(s.Fields)),
		ToNames:   make([]string, len(s.Fields)),
	}
	for i, f := range s.Fields {
		dt, bigEndian, err := interp.ParseDType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		r.FromTypes[i] = interp.Primitive{DType: dt, BigEndian: bigEndian}
		r.FromNames[i] = f.Name
		r.ToTypes[i] = interp.Primitive{DType: dt}
		r.ToNames[i] = f.Name
	}
	return r, nil
}

func (p PrimitiveSpec) build() (interp.Primitive, error) {
	dt, bigEndian, err := interp.ParseDType(p.Type)
	if err != nil {
		return interp.Primitive{}, err
	}
	return interp.Primitive{DType: dt, BigEndian: bigEndian, Dims: p.Dims}, nil
}

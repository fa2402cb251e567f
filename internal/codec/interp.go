package codec

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/soltixdb/roly/internal/fbs/interpfb"
	"github.com/soltixdb/roly/internal/interp"
	"github.com/soltixdb/roly/internal/layout"
)

// EncodeInterpretation serializes an interpretation tree as a standalone
// buffer
func EncodeInterpretation(desc interp.Interpretation) ([]byte, error) {
	b := flatbuffers.NewBuilder(256)
	off, err := buildInterpretation(b, desc)
	if err != nil {
		return nil, err
	}
	b.Finish(off)
	return b.FinishedBytes(), nil
}

// DecodeInterpretation reads a buffer produced by EncodeInterpretation
func DecodeInterpretation(buf []byte) (desc interp.Interpretation, err error) {
	defer guard(&err, "interpretation")
	return readInterpretation(interpfb.GetRootAsInterpretation(buf, 0))
}

func buildInterpretation(b *flatbuffers.Builder, desc interp.Interpretation) (flatbuffers.UOffsetT, error) {
	var (
		kind interpfb.InterpretationData
		data flatbuffers.UOffsetT
	)

	switch d := desc.(type) {
	case *interp.Flat:
		from := buildPrimitive(b, d.From)
		to := buildPrimitive(b, d.To)
		interpfb.FlatStart(b)
		interpfb.FlatAddFromtype(b, from)
		interpfb.FlatAddTotype(b, to)
		kind, data = interpfb.InterpretationDataFlat, interpfb.FlatEnd(b)

	case *interp.Record:
		fromTypes := primitiveVector(b, interpfb.RecordStartFromtypesVector, d.FromTypes)
		fromNames := stringVector(b, interpfb.RecordStartFromnamesVector, d.FromNames)
		toTypes := primitiveVector(b, interpfb.RecordStartTotypesVector, d.ToTypes)
		toNames := stringVector(b, interpfb.RecordStartTonamesVector, d.ToNames)
		interpfb.RecordStart(b)
		interpfb.RecordAddFromtypes(b, fromTypes)
		interpfb.RecordAddFromnames(b, fromNames)
		interpfb.RecordAddTotypes(b, toTypes)
		interpfb.RecordAddTonames(b, toNames)
		kind, data = interpfb.InterpretationDataRecord, interpfb.RecordEnd(b)

	case *interp.Double32:
		fromDims := uint32Vector(b, interpfb.Double32StartFromdimsVector, d.FromDims)
		toDims := uint32Vector(b, interpfb.Double32StartTodimsVector, d.ToDims)
		interpfb.Double32Start(b)
		interpfb.Double32AddLow(b, d.Low)
		interpfb.Double32AddHigh(b, d.High)
		interpfb.Double32AddNumbits(b, d.NumBits)
		interpfb.Double32AddFromdims(b, fromDims)
		interpfb.Double32AddTodims(b, toDims)
		kind, data = interpfb.InterpretationDataDouble32, interpfb.Double32End(b)

	case *interp.STLBitSet:
		interpfb.STLBitSetStart(b)
		interpfb.STLBitSetAddNumbytes(b, d.NumBytes)
		kind, data = interpfb.InterpretationDataSTLBitSet, interpfb.STLBitSetEnd(b)

	case *interp.Jagged:
		content, err := buildInterpretation(b, d.Content)
		if err != nil {
			return 0, err
		}
		interpfb.JaggedStart(b)
		interpfb.JaggedAddContent(b, content)
		interpfb.JaggedAddSkipbytes(b, d.SkipBytes)
		kind, data = interpfb.InterpretationDataJagged, interpfb.JaggedEnd(b)

	case *interp.String:
		interpfb.StringStart(b)
		interpfb.StringAddSkipbytes(b, d.SkipBytes)
		kind, data = interpfb.InterpretationDataString, interpfb.StringEnd(b)

	case *interp.TableObj:
		content, err := buildInterpretation(b, d.Content)
		if err != nil {
			return 0, err
		}
		qualname := stringVector(b, interpfb.TableObjStartQualnameVector, d.Qualname)
		interpfb.TableObjStart(b)
		interpfb.TableObjAddContent(b, content)
		interpfb.TableObjAddQualname(b, qualname)
		kind, data = interpfb.InterpretationDataTableObj, interpfb.TableObjEnd(b)

	default:
		return 0, fmt.Errorf("codec: cannot encode interpretation %T", desc)
	}

	interpfb.InterpretationStart(b)
	interpfb.InterpretationAddDataType(b, kind)
	interpfb.InterpretationAddData(b, data)
	return interpfb.InterpretationEnd(b), nil
}

func buildPrimitive(b *flatbuffers.Builder, p interp.Primitive) flatbuffers.UOffsetT {
	dims := uint32Vector(b, interpfb.PrimitiveStartDimsVector, p.Dims)
	interpfb.PrimitiveStart(b)
	interpfb.PrimitiveAddDtype(b, interpfb.DType(p.DType))
	interpfb.PrimitiveAddBigendian(b, p.BigEndian)
	interpfb.PrimitiveAddDims(b, dims)
	return interpfb.PrimitiveEnd(b)
}

func primitiveVector(b *flatbuffers.Builder, start vectorStart, types []interp.Primitive) flatbuffers.UOffsetT {
	offsets := make([]flatbuffers.UOffsetT, len(types))
	for i, t := range types {
		offsets[i] = buildPrimitive(b, t)
	}
	return offsetVector(b, start, offsets)
}

func readInterpretation(fb *interpfb.Interpretation) (interp.Interpretation, error) {
	var tab flatbuffers.Table
	if !fb.Data(&tab) {
		return nil, malformed("missing %s data", fb.DataType())
	}

	switch fb.DataType() {
	case interpfb.InterpretationDataFlat:
		var f interpfb.Flat
		f.Init(tab.Bytes, tab.Pos)
		from, to := f.Fromtype(nil), f.Totype(nil)
		if from == nil || to == nil {
			return nil, malformed("flat interpretation without types")
		}
		fromType, err := readPrimitive(from)
		if err != nil {
			return nil, err
		}
		toType, err := readPrimitive(to)
		if err != nil {
			return nil, err
		}
		return &interp.Flat{From: fromType, To: toType}, nil

	case interpfb.InterpretationDataRecord:
		var r interpfb.Record
		r.Init(tab.Bytes, tab.Pos)
		fromTypes, err := readPrimitives(r.FromtypesLength(), r.Fromtypes)
		if err != nil {
			return nil, err
		}
		toTypes, err := readPrimitives(r.TotypesLength(), r.Totypes)
		if err != nil {
			return nil, err
		}
		fromNames := readStrings(r.FromnamesLength(), r.Fromnames)
		toNames := readStrings(r.TonamesLength(), r.Tonames)
		if len(fromNames) != len(fromTypes) || len(toNames) != len(toTypes) {
			return nil, malformed("record names and types differ in length")
		}
		return &interp.Record{FromTypes: fromTypes, FromNames: fromNames, ToTypes: toTypes, ToNames: toNames}, nil

	case interpfb.InterpretationDataDouble32:
		var d interpfb.Double32
		d.Init(tab.Bytes, tab.Pos)
		return &interp.Double32{
			Low:      d.Low(),
			High:     d.High(),
			NumBits:  d.Numbits(),
			FromDims: readDims(d.FromdimsLength(), d.Fromdims),
			ToDims:   readDims(d.TodimsLength(), d.Todims),
		}, nil

	case interpfb.InterpretationDataSTLBitSet:
		var s interpfb.STLBitSet
		s.Init(tab.Bytes, tab.Pos)
		return &interp.STLBitSet{NumBytes: s.Numbytes()}, nil

	case interpfb.InterpretationDataJagged:
		var j interpfb.Jagged
		j.Init(tab.Bytes, tab.Pos)
		content := j.Content(nil)
		if content == nil {
			return nil, malformed("jagged interpretation without content")
		}
		inner, err := readInterpretation(content)
		if err != nil {
			return nil, err
		}
		return &interp.Jagged{Content: inner, SkipBytes: j.Skipbytes()}, nil

	case interpfb.InterpretationDataString:
		var s interpfb.String
		s.Init(tab.Bytes, tab.Pos)
		return &interp.String{SkipBytes: s.Skipbytes()}, nil

	case interpfb.InterpretationDataTableObj:
		var t interpfb.TableObj
		t.Init(tab.Bytes, tab.Pos)
		content := t.Content(nil)
		if content == nil {
			return nil, malformed("object interpretation without content")
		}
		inner, err := readInterpretation(content)
		if err != nil {
			return nil, err
		}
		return &interp.TableObj{Content: inner, Qualname: readStrings(t.QualnameLength(), t.Qualname)}, nil
	}

	return nil, malformed("unknown interpretation type %d", fb.DataType())
}

func readPrimitive(fb *interpfb.Primitive) (interp.Primitive, error) {
	dt := interp.DType(fb.Dtype())
	if !dt.Valid() {
		return interp.Primitive{}, malformed("unknown dtype %d", fb.Dtype())
	}
	return interp.Primitive{DType: dt, BigEndian: fb.Bigendian(), Dims: readDims(fb.DimsLength(), fb.Dims)}, nil
}

func readPrimitives(n int, at func(*interpfb.Primitive, int) bool) ([]interp.Primitive, error) {
	out := make([]interp.Primitive, n)
	for i := range out {
		var p interpfb.Primitive
		if !at(&p, i) {
			return nil, malformed("missing primitive %d", i)
		}
		prim, err := readPrimitive(&p)
		if err != nil {
			return nil, err
		}
		out[i] = prim
	}
	return out, nil
}

// readDims returns nil for scalars so descriptors compare equal after a
// round trip
func readDims(n int, at func(int) uint32) []uint32 {
	if n == 0 {
		return nil
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = at(i)
	}
	return out
}

func readStrings(n int, at func(int) []byte) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(at(i))
	}
	return out
}

func malformed(format string, args ...any) error {
	return &layout.LayoutError{Entity: "interpretation", Reason: fmt.Sprintf(format, args...)}
}

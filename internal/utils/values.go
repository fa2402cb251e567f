package utils

import (
	"math"

	"github.com/soltixdb/roly/internal/interp"
)

// JSONValues returns v with every value encoding/json cannot carry
// replaced: byte arrays become integer lists instead of base64 strings,
// and NaN or infinite floats become null.
func JSONValues(v any) any {
	switch val := v.(type) {
	case *interp.Array:
		return &interp.Array{DType: val.DType, Shape: val.Shape, Values: jsonScalars(val.Values)}
	case *interp.JaggedArray:
		return &interp.JaggedArray{Offsets: val.Offsets, Content: JSONValues(val.Content)}
	case *interp.RecordArray:
		fields := make([]*interp.Array, len(val.Fields))
		for i, f := range val.Fields {
			fields[i] = JSONValues(f).(*interp.Array)
		}
		return &interp.RecordArray{Names: val.Names, Fields: fields, Length: val.Length}
	}
	return v
}

func jsonScalars(values any) any {
	switch s := values.(type) {
	case []uint8:
		out := make([]uint16, len(s))
		for i, b := range s {
			out[i] = uint16(b)
		}
		return out
	case []float32:
		if !hasNonFinite(s) {
			return s
		}
		out := make([]*float32, len(s))
		for i := range s {
			if f := float64(s[i]); !math.IsNaN(f) && !math.IsInf(f, 0) {
				out[i] = &s[i]
			}
		}
		return out
	case []float64:
		if !hasNonFinite(s) {
			return s
		}
		out := make([]*float64, len(s))
		for i := range s {
			if !math.IsNaN(s[i]) && !math.IsInf(s[i], 0) {
				out[i] = &s[i]
			}
		}
		return out
	}
	return values
}

func hasNonFinite[F float32 | float64](s []F) bool {
	for _, v := range s {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}
	return false
}

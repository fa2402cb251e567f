package utils

import (
	"math"

	"github.com/soltixdb/roly/internal/interp"
)

// Summary holds simple statistics over the numeric values of an array
type Summary struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
}

// Summarize computes statistics over every element of a numeric array or
// the content of a jagged array. NaN values are skipped. ok is false for
// values that are not numeric.
func Summarize(v any) (s Summary, ok bool) {
	var arr *interp.Array
	switch val := v.(type) {
	case *interp.Array:
		arr = val
	case *interp.JaggedArray:
		return Summarize(val.Content)
	default:
		return Summary{}, false
	}

	var sum float64
	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	n := elementCount(arr.Values)
	if n < 0 {
		return Summary{}, false
	}
	for i := 0; i < n; i++ {
		f, ok := ToFloat64(elementAt(arr.Values, i))
		if !ok {
			return Summary{}, false
		}
		if math.IsNaN(f) {
			continue
		}
		s.Count++
		sum += f
		s.Min = math.Min(s.Min, f)
		s.Max = math.Max(s.Max, f)
	}
	if s.Count == 0 {
		return Summary{}, true
	}
	s.Mean = sum / float64(s.Count)
	return s, true
}

// ToFloat64 converts a numeric scalar to float64
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func elementCount(values any) int {
	switch s := values.(type) {
	case []bool:
		return len(s)
	case []int8:
		return len(s)
	case []int16:
		return len(s)
	case []int32:
		return len(s)
	case []int64:
		return len(s)
	case []uint8:
		return len(s)
	case []uint16:
		return len(s)
	case []uint32:
		return len(s)
	case []uint64:
		return len(s)
	case []float32:
		return len(s)
	case []float64:
		return len(s)
	}
	return -1
}

func elementAt(values any, i int) any {
	switch s := values.(type) {
	case []bool:
		return s[i]
	case []int8:
		return s[i]
	case []int16:
		return s[i]
	case []int32:
		return s[i]
	case []int64:
		return s[i]
	case []uint8:
		return s[i]
	case []uint16:
		return s[i]
	case []uint32:
		return s[i]
	case []uint64:
		return s[i]
	case []float32:
		return s[i]
	case []float64:
		return s[i]
	}
	return nil
}

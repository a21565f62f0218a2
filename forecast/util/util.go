// Package util holds small helpers shared by the forecast printers and transforms
package util

import "math"

func IndentExpand(indent string, growth int) string {
	indentByte := []byte(indent)
	out := make([]byte, 0, len(indent)*growth)
	for i := 0; i < growth; i++ {
		out = append(out, indentByte...)
	}
	return string(out)
}

// SliceMap applies lambda to every element in place and returns the same slice
func SliceMap(arr []float64, lambda func(float64) float64) []float64 {
	for i, v := range arr {
		arr[i] = lambda(v)
	}
	return arr
}

// Round rounds to the given number of decimal places. Negative precision leaves the value
// untouched.
func Round(v float64, precision int) float64 {
	if precision < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}

// ClampNonNegative maps negative and non-finite values to zero
func ClampNonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

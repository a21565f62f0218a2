// Package stats holds summary statistics and fit scores shared by the forecaster and the
// pipeline.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MeanStd returns the mean and sample standard deviation of the finite values of y. The
// standard deviation is 0 with fewer than two values and both are 0 for an empty input.
func MeanStd(y []float64) (float64, float64) {
	vals := finite(y)
	switch len(vals) {
	case 0:
		return 0, 0
	case 1:
		return vals[0], 0
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

// Mean returns the mean of the finite values of y, 0 when there are none
func Mean(y []float64) float64 {
	vals := finite(y)
	if len(vals) == 0 {
		return 0
	}
	return floats.Sum(vals) / float64(len(vals))
}

func finite(y []float64) []float64 {
	vals := make([]float64, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		vals = append(vals, v)
	}
	return vals
}

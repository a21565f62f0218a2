package timedataset

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonContiguous      = errors.New("months are not a contiguous monthly grid")
	ErrDatasetLenMismatch = errors.New("month feature has a different length than observations")
)

// TimeDataset represents a monthly time series storing a slice of months and values. Both must
// be of the same length and the months must step forward by exactly one month with no gaps.
type TimeDataset struct {
	T MonthSlice
	Y []float64
}

// NewMonthlyDataset returns an instance of a TimeDataset given a month and value slice.
func NewMonthlyDataset(t []Month, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"month feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	for i := 1; i < len(t); i++ {
		if t[i].Sub(t[i-1]) != 1 {
			return nil, fmt.Errorf("gap between %s and %s at %d, %w", t[i-1], t[i], i, ErrNonContiguous)
		}
	}

	tSeries := make(MonthSlice, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	td := &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}

	return td, nil
}

func (td *TimeDataset) Copy() *TimeDataset {
	tSeries := make(MonthSlice, len(td.T))
	ySeries := make([]float64, len(td.T))
	copy(tSeries, td.T)
	copy(ySeries, td.Y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}

func (td *TimeDataset) Len() int {
	if td == nil {
		return 0
	}
	return len(td.Y)
}

func (td *TimeDataset) First() Month {
	return td.T.StartMonth()
}

func (td *TimeDataset) Last() Month {
	return td.T.EndMonth()
}

// Values returns a copy of the observations
func (td *TimeDataset) Values() []float64 {
	y := make([]float64, len(td.Y))
	copy(y, td.Y)
	return y
}

// Lookup returns the observed value for a month if it lies within the dataset range.
func (td *TimeDataset) Lookup(m Month) (float64, bool) {
	if td.Len() == 0 {
		return 0, false
	}
	idx := m.Sub(td.First())
	if idx < 0 || idx >= len(td.Y) {
		return 0, false
	}
	return td.Y[idx], true
}

// NonZero counts observations that are neither zero nor NaN.
func (td *TimeDataset) NonZero() int {
	var cnt int
	for _, v := range td.Y {
		if v != 0 && !math.IsNaN(v) {
			cnt++
		}
	}
	return cnt
}

// Sum returns the total of all observations
func (td *TimeDataset) Sum() float64 {
	return floats.Sum(td.Y)
}

package forecast

import (
	"math"
	"testing"

	"github.com/bfp-analytics/go-firecast/timedataset"

	"github.com/stretchr/testify/require"
)

// seasonalCounts returns n months of non-negative whole counts with a yearly cycle
func seasonalCounts(t *testing.T, start timedataset.Month, n int, level float64, seed uint64) *timedataset.TimeDataset {
	months := timedataset.GenerateMonths(start, n)
	y := timedataset.GenerateConstY(n, level).
		Add(timedataset.GenerateSeasonalY(months, level/2, 4)).
		Add(timedataset.GenerateNoise(n, math.Max(level/4, 0.5), seed)).
		Clip().
		Round()

	ds, err := timedataset.NewMonthlyDataset(months, y)
	require.Nil(t, err)
	return ds
}

func dataset(t *testing.T, start timedataset.Month, y []float64) *timedataset.TimeDataset {
	ds, err := timedataset.NewMonthlyDataset(timedataset.GenerateMonths(start, len(y)), y)
	require.Nil(t, err)
	return ds
}

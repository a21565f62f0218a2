package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndentExpand(t *testing.T) {
	assert.Equal(t, "", IndentExpand("  ", 0))
	assert.Equal(t, "    ", IndentExpand("  ", 2))
}

func TestSliceMap(t *testing.T) {
	arr := []float64{1, 2, 3}
	res := SliceMap(arr, func(v float64) float64 { return v * 2 })
	assert.Equal(t, []float64{2, 4, 6}, res)
	assert.Equal(t, []float64{2, 4, 6}, arr)
}

func TestRound(t *testing.T) {
	testData := map[string]struct {
		v         float64
		precision int
		expected  float64
	}{
		"three places": {1.23456, 3, 1.235},
		"six places":   {0.1234567, 6, 0.123457},
		"zero places":  {2.5, 0, 3},
		"negative":     {1.23456, -1, 1.23456},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, td.expected, Round(td.v, td.precision), 1e-12)
		})
	}
	assert.True(t, math.IsNaN(Round(math.NaN(), 3)))
}

func TestClampNonNegative(t *testing.T) {
	assert.Equal(t, 0.0, ClampNonNegative(-1))
	assert.Equal(t, 0.0, ClampNonNegative(math.NaN()))
	assert.Equal(t, 0.0, ClampNonNegative(math.Inf(1)))
	assert.Equal(t, 2.5, ClampNonNegative(2.5))
}

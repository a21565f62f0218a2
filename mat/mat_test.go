package mat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLagDesign(t *testing.T) {
	w := []float64{1, 2, 3, 4, 5, 6}

	x, y, err := LagDesign(w, []int{2, 1}, 1, 1)
	require.Nil(t, err)

	expectedX := mat.NewDense(4, 2, []float64{
		1, 0,
		2, 1,
		3, 2,
		4, 3,
	})
	expectedY := mat.NewDense(4, 1, []float64{2, 3, 4, 5})
	assert.True(t, mat.Equal(expectedX, x))
	assert.True(t, mat.Equal(expectedY, y))
}

func TestLagDesignErrors(t *testing.T) {
	w := []float64{1, 2, 3, 4}

	testData := map[string]struct {
		lags    []int
		minRows int
		err     error
	}{
		"no lags":      {nil, 1, ErrNoLags},
		"zero lag":     {[]int{0, 1}, 1, ErrInvalidLag},
		"lag too long": {[]int{4}, 1, ErrShortSeries},
		"too few rows": {[]int{1, 2}, 3, ErrShortSeries},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, _, err := LagDesign(w, td.lags, 0, td.minRows)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

// Package mat builds gonum matrices for the lag regressions used to seed model estimation.
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoLags      = errors.New("no lags requested")
	ErrInvalidLag  = errors.New("lags must be positive")
	ErrShortSeries = errors.New("series too short for requested lags")
)

// LagDesign regresses each centered observation on its own centered lags. Row t-maxLag of
// the design holds w[t-l]-center for every lag l in the order given and the response holds
// w[t]-center. minRows guards against fits with fewer rows than the regression needs.
func LagDesign(w []float64, lags []int, center float64, minRows int) (*mat.Dense, *mat.Dense, error) {
	if len(lags) == 0 {
		return nil, nil, ErrNoLags
	}
	maxLag := 0
	for _, l := range lags {
		if l <= 0 {
			return nil, nil, fmt.Errorf("lag %d, %w", l, ErrInvalidLag)
		}
		if l > maxLag {
			maxLag = l
		}
	}
	rows := len(w) - maxLag
	if rows <= 0 || rows < minRows {
		return nil, nil, fmt.Errorf("%d observations with max lag %d, %w", len(w), maxLag, ErrShortSeries)
	}

	x := mat.NewDense(rows, len(lags), nil)
	y := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		t := i + maxLag
		for j, l := range lags {
			x.Set(i, j, w[t-l]-center)
		}
		y.Set(i, 0, w[t]-center)
	}
	return x, y, nil
}

package models

import (
	"fmt"
	"math"

	mat_ "github.com/bfp-analytics/go-firecast/mat"

	"gonum.org/v1/gonum/mat"
)

// LagRegression regresses a centered series on a set of its own lags by QR least squares. The
// coefficients seed the autoregressive terms before likelihood optimization.
type LagRegression struct {
	lags   []int
	center float64
	coef   []float64
	rows   int
}

// NewLagRegression regresses on the given lags, in the order given, after subtracting center.
func NewLagRegression(lags []int, center float64) (*LagRegression, error) {
	if len(lags) == 0 {
		return nil, fmt.Errorf("no lags, %w", ErrInvalidOrder)
	}
	for _, l := range lags {
		if l <= 0 {
			return nil, fmt.Errorf("lag %d, %w", l, ErrInvalidOrder)
		}
	}
	return &LagRegression{
		lags:   append([]int(nil), lags...),
		center: center,
	}, nil
}

// Fit requires at least two more regression rows than lags.
func (l *LagRegression) Fit(w []float64) error {
	l.coef = nil
	l.rows = 0
	if len(w) == 0 {
		return ErrNoTrainingArray
	}

	x, y, err := mat_.LagDesign(w, l.lags, l.center, len(l.lags)+2)
	if err != nil {
		return fmt.Errorf("%s, %w", err.Error(), ErrInsufficientData)
	}

	var qr mat.QR
	qr.Factorize(x)

	var c mat.Dense
	if err := qr.SolveTo(&c, false, y); err != nil {
		return fmt.Errorf("%s, %w", err.Error(), ErrSingularDesign)
	}

	coef := mat.Col(nil, 0, &c)
	for _, v := range coef {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("lag coefficients, %w", ErrNonFinite)
		}
	}
	l.coef = coef
	l.rows, _ = x.Dims()
	return nil
}

// Coef returns one coefficient per lag in the order the lags were given
func (l *LagRegression) Coef() []float64 {
	return append([]float64(nil), l.coef...)
}

// Rows is the number of observations the last fit regressed on
func (l *LagRegression) Rows() int {
	return l.rows
}

// Package models is a collection of model fitting implementations used by the forecaster. It
// holds a QR based lag regression used for initial estimates and the seasonal ARIMA family
// used to forecast monthly series.
package models

// Model is a univariate time series model fit on an evenly spaced series
type Model interface {
	Spec() Spec
	Fit(y []float64) error
	Forecast(steps int, alpha float64) (*Prediction, error)
	FittedValues() []float64
	LogLikelihood() float64
	Score(c Criterion) float64
	Params() []float64
	Sigma2() float64
	NumObs() int
}

// Prediction holds a multi-step forecast with a two sided (1-Alpha) interval.
type Prediction struct {
	Mean   []float64
	Lower  []float64
	Upper  []float64
	StdErr []float64
	Alpha  float64
}

func (p *Prediction) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Mean)
}

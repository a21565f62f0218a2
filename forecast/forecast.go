// Package forecast fits a small set of candidate models to a single monthly series, selects a
// winner and produces bounded forecasts on the original count scale, degrading to a constant
// mean forecast when the history cannot support a model.
package forecast

import (
	"fmt"
	"math"

	"github.com/bfp-analytics/go-firecast/forecast/util"
	"github.com/bfp-analytics/go-firecast/models"
	"github.com/bfp-analytics/go-firecast/stats"
	"github.com/bfp-analytics/go-firecast/timedataset"
)

const (
	MarkerInsufficientData = "Mean Fallback (Insufficient Data)"
	MarkerFallback         = "Mean Fallback"
	MarkerHistorical       = "Historical Data"
)

// fallback reasons surfaced in the summary
const (
	ReasonInsufficientData = "insufficient_data"
	ReasonNoModel          = "no_model"
	ReasonRefitFailed      = "refit_failed"
	ReasonForecastFailed   = "forecast_failed"
)

// Forecaster runs candidate selection and forecasting for a single series at a time. It holds
// no per-series state and is safe for concurrent use.
type Forecaster struct {
	opt *Options
}

func New(opt *Options) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("unable to validate forecast options, %w", err)
	}
	return &Forecaster{opt: opt}, nil
}

// Options returns a copy of the validated options
func (f *Forecaster) Options() Options {
	opt := *f.opt
	opt.Candidates = f.opt.Candidates.Copy()
	return opt
}

// Point is a forecast value on the original scale for one calendar month
type Point struct {
	Month      timedataset.Month
	Predicted  float64
	Lower      float64
	Upper      float64
	ModelUsed  string
	Historical bool
}

// Result holds the forecast of one series. Months lists the calendar months covered by the
// forecast, starting right after the last historical month.
type Result struct {
	Months    timedataset.MonthSlice
	Predicted []float64
	Lower     []float64
	Upper     []float64
	ModelUsed string
	Fallback  bool
	Summary   Summary

	history *timedataset.TimeDataset
	mean    float64
	std     float64
}

// At resolves a calendar month against the result. Observed months return the observed count
// for all three values. Months inside the forecast index return that step. Any other month
// gets the constant mean fallback.
func (r *Result) At(m timedataset.Month) Point {
	if v, ok := r.history.Lookup(m); ok {
		return Point{
			Month:      m,
			Predicted:  v,
			Lower:      v,
			Upper:      v,
			ModelUsed:  MarkerHistorical,
			Historical: true,
		}
	}

	if len(r.Months) > 0 {
		idx := m.Sub(r.Months.StartMonth())
		if idx >= 0 && idx < len(r.Months) && r.Months[idx] == m {
			return Point{
				Month:     m,
				Predicted: r.Predicted[idx],
				Lower:     r.Lower[idx],
				Upper:     r.Upper[idx],
				ModelUsed: r.ModelUsed,
			}
		}
	}

	p := fallbackPoint(r.mean, r.std)
	p.Month = m
	p.ModelUsed = MarkerFallback
	return p
}

func fallbackPoint(mean, std float64) Point {
	return bounded(mean, mean-std, mean+std)
}

// bounded clamps all values to be non-negative and finite and keeps lower <= predicted <= upper
func bounded(predicted, lower, upper float64) Point {
	p := Point{
		Predicted: util.ClampNonNegative(predicted),
		Lower:     util.ClampNonNegative(lower),
		Upper:     util.ClampNonNegative(upper),
	}
	p.Lower = math.Min(p.Lower, p.Predicted)
	p.Upper = math.Max(p.Upper, p.Predicted)
	return p
}

// Forecast models the series and forecasts steps months after its last month. Zero steps
// skips estimation entirely since every requested month is already observed.
func (f *Forecaster) Forecast(series *timedataset.TimeDataset, steps int) (*Result, error) {
	if series.Len() == 0 {
		return nil, ErrNoSeries
	}
	if steps < 0 {
		return nil, fmt.Errorf("got %d steps, %w", steps, ErrNegativeSteps)
	}

	y := series.Values()
	mean, std := stats.MeanStd(y)
	res := &Result{
		Months:  ForecastMonths(series.Last(), steps),
		history: series.Copy(),
		mean:    mean,
		std:     std,
		Summary: Summary{
			Months:        series.Len(),
			NonZeroMonths: series.NonZero(),
			Transform:     string(f.opt.Transform),
			Policy:        string(f.opt.Policy),
		},
	}

	if steps == 0 {
		res.ModelUsed = MarkerHistorical
		res.Summary.ModelType = MarkerHistorical
		res.Summary.Model = MarkerHistorical
		return res, nil
	}

	if series.Len() < f.opt.MinMonths || series.NonZero() < f.opt.MinNonZero {
		res.fallback(steps, MarkerInsufficientData, ReasonInsufficientData, nil)
		return res, nil
	}

	yt := f.opt.Transform.ForwardSlice(y)
	winner, ok := f.selectWinner(yt, res)
	if !ok {
		return res, nil
	}

	pred, err := winner.Model.Forecast(steps, f.opt.Alpha)
	if err != nil {
		res.fallback(steps, MarkerFallback, ReasonForecastFailed, err)
		return res, nil
	}

	res.Predicted = make([]float64, steps)
	res.Lower = make([]float64, steps)
	res.Upper = make([]float64, steps)
	for h := 0; h < steps; h++ {
		p := bounded(
			f.opt.Transform.Inverse(pred.Mean[h]),
			f.opt.Transform.Inverse(pred.Lower[h]),
			f.opt.Transform.Inverse(pred.Upper[h]),
		)
		res.Predicted[h] = p.Predicted
		res.Lower[h] = p.Lower
		res.Upper[h] = p.Upper
	}
	res.ModelUsed = winner.Spec.String()
	res.Summary.setWinner(winner, f.opt.Criterion)

	fitted := f.opt.Transform.InverseSlice(winner.Model.FittedValues())
	// the first observation never has a usable one step prediction
	if len(fitted) > 1 {
		if scores, err := stats.NewScores(fitted[1:], y[1:]); err == nil {
			res.Summary.MAE = floatPtr(scores.MAE)
			res.Summary.RMSE = floatPtr(scores.RMSE)
		}
	}
	return res, nil
}

// selectWinner runs selection, optionally on a training window followed by a refit on the full
// history. It records the fallback on the result when no model can be used.
func (f *Forecaster) selectWinner(yt []float64, res *Result) (FitOutcome, bool) {
	steps := len(res.Months)
	v := f.opt.ValidationMonths
	if v == 0 || len(yt)-v <= v {
		sel := Select(yt, f.opt.Candidates, f.opt.Policy, f.opt.Criterion)
		res.Summary.addCandidates(sel.Outcomes)
		if sel.NoModel() {
			res.fallback(steps, MarkerFallback, ReasonNoModel, nil)
			return FitOutcome{}, false
		}
		return *sel.Best, true
	}

	train, test := yt[:len(yt)-v], yt[len(yt)-v:]
	sel := Select(train, f.opt.Candidates, f.opt.Policy, f.opt.Criterion)
	res.Summary.addCandidates(sel.Outcomes)
	if sel.NoModel() {
		res.fallback(steps, MarkerFallback, ReasonNoModel, nil)
		return FitOutcome{}, false
	}

	if pred, err := sel.Best.Model.Forecast(v, f.opt.Alpha); err == nil {
		if rmse, err := stats.RMSE(pred.Mean, test); err == nil {
			res.Summary.ValidationRMSE = floatPtr(rmse)
		}
	}

	refit := FitCandidate(sel.Best.Spec, yt, f.opt.Criterion, models.CommonConditioning(len(yt), f.opt.Candidates.All()))
	if !refit.Fitted() {
		res.fallback(steps, MarkerFallback, ReasonRefitFailed, refit.Err)
		return FitOutcome{}, false
	}
	return refit, true
}

func (r *Result) fallback(steps int, marker, reason string, err error) {
	p := fallbackPoint(r.mean, r.std)
	r.Predicted = make([]float64, steps)
	r.Lower = make([]float64, steps)
	r.Upper = make([]float64, steps)
	for h := 0; h < steps; h++ {
		r.Predicted[h] = p.Predicted
		r.Lower[h] = p.Lower
		r.Upper[h] = p.Upper
	}
	r.ModelUsed = marker
	r.Fallback = true
	r.Summary.ModelType = MarkerFallback
	r.Summary.Model = marker
	r.Summary.Fallback = reason
	r.Summary.Mean = floatPtr(r.mean)
	r.Summary.Std = floatPtr(r.std)
	if err != nil {
		r.Summary.Error = err.Error()
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

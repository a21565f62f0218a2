// Package firecast forecasts monthly fire incident counts per area. Historical records are
// grouped into contiguous monthly series, each area is modeled independently with a small set
// of ARIMA and seasonal ARIMA candidates, and the requested months are reported with bounds
// and a risk label.
package firecast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bfp-analytics/go-firecast/forecast"
	"github.com/bfp-analytics/go-firecast/timedataset"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrMissingParameters = errors.New("missing historical data or forecast horizon")
	ErrNoHorizon         = errors.New("no forecast horizon")
	ErrInvalidHorizon    = errors.New("invalid forecast horizon")
	ErrUnknownVariant    = errors.New("unknown variant")
	ErrInvalidPrecision  = errors.New("precision must not be negative")
)

// Observer receives per area outcomes, typically to record metrics. All methods must be safe
// for concurrent use.
type Observer interface {
	ObserveArea(area, model string, fallback bool, elapsed time.Duration)
	ObserveDropped(n int)
}

type nopObserver struct{}

func (nopObserver) ObserveArea(string, string, bool, time.Duration) {}
func (nopObserver) ObserveDropped(int)                              {}

// Pipeline runs the whole job from historical records to a report. It holds no per run state
// and may be reused.
type Pipeline struct {
	opt *Options
	log logrus.FieldLogger
	obs Observer
	now func() time.Time

	// OnArea is called after every area finishes, from the goroutine that modeled it
	OnArea func(area string)
}

// New creates a pipeline. A nil logger discards log output and a nil observer ignores
// outcomes.
func New(opt *Options, log logrus.FieldLogger, obs Observer) (*Pipeline, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("unable to validate options, %w", err)
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Pipeline{
		opt: opt,
		log: log,
		obs: obs,
		now: time.Now,
	}, nil
}

// Options returns the validated options
func (p *Pipeline) Options() Options {
	return *p.opt
}

type areaResult struct {
	area    string
	points  []ForecastPoint
	summary forecast.Summary
	ok      bool

	// series and result are kept for plotting
	series *timedataset.TimeDataset
	result *forecast.Result
}

// Run builds the monthly series of every area and forecasts the requested months. Missing
// records or horizon is the only error; problems with individual areas are reported in the
// models summary.
func (p *Pipeline) Run(ctx context.Context, records []timedataset.Record, h Horizon) (*Report, error) {
	rep, _, err := p.run(ctx, records, h)
	return rep, err
}

func (p *Pipeline) run(ctx context.Context, records []timedataset.Record, h Horizon) (*Report, []areaResult, error) {
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no historical records, %w", ErrMissingParameters)
	}
	if err := h.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w, %w", ErrMissingParameters, err)
	}

	built := timedataset.BuildMonthly(records)
	p.obs.ObserveDropped(built.Dropped)
	if built.Dropped > 0 {
		p.log.WithField("dropped", built.Dropped).Warn("dropped unusable records")
	}

	results := make([]areaResult, len(built.Areas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opt.Workers)
	for i, a := range built.Areas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.runArea(a, h)
			if p.OnArea != nil {
				p.OnArea(a.Area)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	rep := &Report{
		Forecasts: []ForecastPoint{},
		Metadata: Metadata{
			GeneratedAt:    p.now(),
			Variant:        p.opt.Variant,
			Horizon:        h.String(),
			TotalAreas:     len(results),
			DroppedRecords: built.Dropped,
			ModelsSummary:  make(map[string]forecast.Summary, len(results)),
		},
	}
	for _, r := range results {
		rep.Metadata.ModelsSummary[r.area] = r.summary
		if r.ok {
			rep.Metadata.SuccessfulForecasts++
		}
		rep.Forecasts = append(rep.Forecasts, r.points...)
	}
	rep.Metadata.TotalPredictions = len(rep.Forecasts)
	if p.opt.GroupByMonth {
		rep.ForecastsByMonth = groupByMonth(rep.Forecasts)
	}

	p.log.WithFields(logrus.Fields{
		"areas":       rep.Metadata.TotalAreas,
		"successful":  rep.Metadata.SuccessfulForecasts,
		"predictions": rep.Metadata.TotalPredictions,
	}).Info("forecast complete")
	return rep, results, nil
}

func (p *Pipeline) runArea(a timedataset.AreaSeries, h Horizon) areaResult {
	start := time.Now()
	out := areaResult{area: a.Area, series: a.Series}
	log := p.log.WithField("area", a.Area)

	if a.Series == nil {
		out.summary = forecast.Summary{Error: SummaryNoData}
		log.Warn("no usable records")
		p.obs.ObserveArea(a.Area, SummaryNoData, false, time.Since(start))
		return out
	}

	targets := h.Targets(a.Series.Last())
	steps, err := forecast.Horizon(a.Series.Last(), targets)
	if err != nil {
		out.summary = forecast.Summary{Error: err.Error()}
		log.WithError(err).Error("unable to resolve horizon")
		return out
	}

	fo, match, tuned := p.opt.forecastOptions(a.Area)
	f, err := forecast.New(fo)
	if err != nil {
		out.summary = forecast.Summary{Error: err.Error()}
		log.WithError(err).Error("unable to create forecaster")
		return out
	}
	if tuned {
		log = log.WithFields(logrus.Fields{"tuned": match.Spec.String(), "tuned_default": match.Default})
	}

	res, err := f.Forecast(a.Series, steps)
	if err != nil {
		out.summary = forecast.Summary{Error: err.Error()}
		log.WithError(err).Error("unable to forecast")
		return out
	}
	out.result = res
	out.ok = true

	ci := p.opt.ConfidenceLevel()
	out.points = make([]ForecastPoint, 0, len(targets))
	for _, m := range targets {
		out.points = append(out.points, newForecastPoint(a.Area, res.At(m), p.opt.RiskLabels, ci, p.opt.Precision))
	}

	out.summary = res.Summary
	out.summary.Round(p.opt.Precision)

	log.WithFields(logrus.Fields{
		"model":     res.ModelUsed,
		"criterion": res.Summary.Criterion,
		"fallback":  res.Summary.Fallback,
		"steps":     steps,
	}).Debug("area modeled")
	p.obs.ObserveArea(a.Area, res.ModelUsed, res.Fallback, time.Since(start))
	return out
}

// Package metrics records pipeline outcomes as Prometheus metrics and writes them in the node
// exporter textfile format.
package metrics

import (
	"time"

	firecast "github.com/bfp-analytics/go-firecast"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeModel    = "model"
	OutcomeFallback = "fallback"
	OutcomeNoData   = "no_data"
)

// Metrics holds the counters of a forecast run. It implements firecast.Observer.
type Metrics struct {
	registry *prometheus.Registry

	AreasTotal     *prometheus.CounterVec
	ModelsUsed     *prometheus.CounterVec
	AreaDuration   prometheus.Histogram
	DroppedRecords prometheus.Counter
	LastRun        prometheus.Gauge
}

// New creates all metrics on a dedicated registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		AreasTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "firecast_areas_total",
				Help: "Number of areas processed by outcome",
			},
			[]string{"outcome"},
		),
		ModelsUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "firecast_models_used_total",
				Help: "Number of areas forecast with each model descriptor",
			},
			[]string{"model"},
		),
		AreaDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "firecast_area_duration_seconds",
			Help:    "Time spent modeling a single area",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		DroppedRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "firecast_dropped_records_total",
			Help: "Number of historical records dropped as unusable",
		}),
		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "firecast_last_run_timestamp_seconds",
			Help: "Unix time the last forecast run finished",
		}),
	}
}

func (m *Metrics) ObserveArea(area, model string, fallback bool, elapsed time.Duration) {
	switch {
	case model == firecast.SummaryNoData:
		m.AreasTotal.WithLabelValues(OutcomeNoData).Inc()
		return
	case fallback:
		m.AreasTotal.WithLabelValues(OutcomeFallback).Inc()
	default:
		m.AreasTotal.WithLabelValues(OutcomeModel).Inc()
	}
	m.ModelsUsed.WithLabelValues(model).Inc()
	m.AreaDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveDropped(n int) {
	m.DroppedRecords.Add(float64(n))
}

// Finish stamps the completion time of the run
func (m *Metrics) Finish(t time.Time) {
	m.LastRun.Set(float64(t.Unix()))
}

// Registry exposes the underlying registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile atomically writes every metric to path in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

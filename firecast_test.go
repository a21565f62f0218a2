package firecast

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/bfp-analytics/go-firecast/forecast"
	"github.com/bfp-analytics/go-firecast/timedataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

func seasonalRecords(area string, start timedataset.Month, n int, level float64, seed uint64) []timedataset.Record {
	months := timedataset.GenerateMonths(start, n)
	y := timedataset.GenerateConstY(n, level).
		Add(timedataset.GenerateSeasonalY(months, level/2, 4)).
		Add(timedataset.GenerateNoise(n, math.Max(level/4, 0.5), seed)).
		Clip().
		Round()
	return records(area, months, y)
}

func records(area string, months timedataset.MonthSlice, y []float64) []timedataset.Record {
	out := make([]timedataset.Record, 0, len(months))
	for i, m := range months {
		out = append(out, timedataset.Record{Area: area, Date: m.String(), IncidentCount: y[i]})
	}
	return out
}

func newTestPipeline(t *testing.T, opt *Options) *Pipeline {
	p, err := New(opt, nil, nil)
	require.Nil(t, err)
	p.now = func() time.Time { return testNow }
	return p
}

func assertPointBounded(t *testing.T, p ForecastPoint) {
	t.Helper()
	assert.GreaterOrEqual(t, p.Lower, 0.0, p.ForecastMonth)
	assert.LessOrEqual(t, p.Lower, p.Predicted, p.ForecastMonth)
	assert.LessOrEqual(t, p.Predicted, p.Upper, p.ForecastMonth)
}

type recordingObserver struct {
	areas   []string
	dropped int
}

func (o *recordingObserver) ObserveArea(area, model string, fallback bool, elapsed time.Duration) {
	o.areas = append(o.areas, area)
}

func (o *recordingObserver) ObserveDropped(n int) {
	o.dropped += n
}

func TestRunMissingParameters(t *testing.T) {
	p := newTestPipeline(t, nil)
	recs := seasonalRecords("A", timedataset.NewMonth(2022, 1), 24, 3, 1)

	testData := map[string]struct {
		records []timedataset.Record
		horizon Horizon
	}{
		"no records": {
			horizon: SingleMonth(timedataset.NewMonth(2024, 1)),
		},
		"no horizon": {
			records: recs,
		},
		"end before start": {
			records: recs,
			horizon: Between(timedataset.NewMonth(2024, 6), timedataset.NewMonth(2024, 1)),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			rep, err := p.Run(context.Background(), td.records, td.horizon)
			assert.ErrorIs(t, err, ErrMissingParameters)
			assert.Nil(t, rep)
		})
	}
}

func TestRun(t *testing.T) {
	var recs []timedataset.Record
	recs = append(recs, seasonalRecords("A", timedataset.NewMonth(2022, 1), 24, 3, 7)...)
	recs = append(recs, records("B",
		timedataset.GenerateMonths(timedataset.NewMonth(2023, 10), 3),
		[]float64{1, 0, 2},
	)...)
	recs = append(recs,
		timedataset.Record{Area: "C", Date: "not a month", IncidentCount: 4},
		timedataset.Record{Area: "C", Date: "", IncidentCount: 1},
	)

	obs := &recordingObserver{}
	p, err := New(nil, nil, obs)
	require.Nil(t, err)
	p.now = func() time.Time { return testNow }

	rep, err := p.Run(context.Background(), recs, MonthsFrom(timedataset.NewMonth(2024, 1), 3))
	require.Nil(t, err)

	assert.Equal(t, testNow, rep.Metadata.GeneratedAt)
	assert.Equal(t, VariantTwelveMonth, rep.Metadata.Variant)
	assert.Equal(t, 3, rep.Metadata.TotalAreas)
	assert.Equal(t, 2, rep.Metadata.SuccessfulForecasts)
	assert.Equal(t, 6, rep.Metadata.TotalPredictions)
	assert.Equal(t, 2, rep.Metadata.DroppedRecords)
	assert.Equal(t, 2, obs.dropped)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, obs.areas)

	require.Len(t, rep.Forecasts, 6)
	expectedAreas := []string{"A", "A", "A", "B", "B", "B"}
	expectedMonths := []string{"2024-01-01", "2024-02-01", "2024-03-01", "2024-01-01", "2024-02-01", "2024-03-01"}
	for i, p := range rep.Forecasts {
		assert.Equal(t, expectedAreas[i], p.Area)
		assert.Equal(t, expectedMonths[i], p.ForecastMonth)
		assert.Equal(t, 95, p.ConfidenceInterval)
		assertPointBounded(t, p)
	}
	for _, p := range rep.AreaForecasts("B") {
		assert.Equal(t, forecast.MarkerInsufficientData, p.ModelUsed)
		assert.InDelta(t, 1.0, p.Predicted, 1e-9)
	}

	assert.Equal(t, SummaryNoData, rep.Metadata.ModelsSummary["C"].Error)
	assert.Equal(t, forecast.ReasonInsufficientData, rep.Metadata.ModelsSummary["B"].Fallback)
	assert.Equal(t, 24, rep.Metadata.ModelsSummary["A"].Months)
	assert.NotEmpty(t, rep.Metadata.ModelsSummary["A"].Candidates)

	require.Len(t, rep.ForecastsByMonth, 3)
	for _, k := range []string{"2024-01", "2024-02", "2024-03"} {
		assert.Len(t, rep.ForecastsByMonth[k], 2, k)
	}
}

func TestRunHistoricalTarget(t *testing.T) {
	months := timedataset.GenerateMonths(timedataset.NewMonth(2023, 1), 12)
	y := []float64{0, 2, 1, 5, 3, 0, 1, 4, 2, 0, 1, 3}
	p := newTestPipeline(t, nil)

	rep, err := p.Run(context.Background(), records("A", months, y), SingleMonth(timedataset.NewMonth(2023, 4)))
	require.Nil(t, err)
	require.Len(t, rep.Forecasts, 1)

	pt := rep.Forecasts[0]
	assert.Equal(t, forecast.MarkerHistorical, pt.ModelUsed)
	assert.Equal(t, 5.0, pt.Predicted)
	assert.Equal(t, 5.0, pt.Lower)
	assert.Equal(t, 5.0, pt.Upper)
	assert.Equal(t, forecast.RiskHigh, pt.RiskLevel)
	require.NotNil(t, pt.RiskFlag)
	assert.Equal(t, forecast.LabelsColab.Elevated, *pt.RiskFlag)
	assert.Equal(t, forecast.MarkerHistorical, rep.Metadata.ModelsSummary["A"].Model)
}

func TestRunAfterHistory(t *testing.T) {
	var recs []timedataset.Record
	recs = append(recs, records("A",
		timedataset.GenerateMonths(timedataset.NewMonth(2023, 1), 4),
		[]float64{1, 2, 1, 2},
	)...)
	recs = append(recs, records("B",
		timedataset.GenerateMonths(timedataset.NewMonth(2023, 6), 3),
		[]float64{0, 3, 1},
	)...)

	opt, err := NewVariantOptions(VariantHistory)
	require.Nil(t, err)
	p := newTestPipeline(t, opt)

	rep, err := p.Run(context.Background(), recs, AfterHistoryMonths(2))
	require.Nil(t, err)
	require.Len(t, rep.Forecasts, 4)

	assert.Equal(t, []string{"2023-05-01", "2023-06-01"},
		[]string{rep.Forecasts[0].ForecastMonth, rep.Forecasts[1].ForecastMonth})
	assert.Equal(t, []string{"2023-09-01", "2023-10-01"},
		[]string{rep.Forecasts[2].ForecastMonth, rep.Forecasts[3].ForecastMonth})
	assert.Nil(t, rep.ForecastsByMonth)
}

func TestRunWorkersDeterministic(t *testing.T) {
	var recs []timedataset.Record
	for i, area := range []string{"Daang Bakal", "Addition Hills", "Plainview", "Mauway", "Hulo"} {
		recs = append(recs, seasonalRecords(area, timedataset.NewMonth(2021, 1), 30, float64(i+1), uint64(i+10))...)
	}
	h := MonthsFrom(timedataset.NewMonth(2023, 7), 4)

	sequential := newTestPipeline(t, nil)
	seqRep, err := sequential.Run(context.Background(), recs, h)
	require.Nil(t, err)

	opt := NewDefaultOptions()
	opt.Workers = 4
	concurrent := newTestPipeline(t, opt)
	conRep, err := concurrent.Run(context.Background(), recs, h)
	require.Nil(t, err)

	assert.Equal(t, seqRep.Forecasts, conRep.Forecasts)
	assert.Equal(t, seqRep.Metadata.ModelsSummary, conRep.Metadata.ModelsSummary)
	assert.Equal(t, "Addition Hills", conRep.Forecasts[0].Area)
}

func TestRunAreaModels(t *testing.T) {
	recs := seasonalRecords("addition hills", timedataset.NewMonth(2021, 1), 36, 2, 3)

	opt := NewDefaultOptions()
	opt.UseAreaModels = true
	p := newTestPipeline(t, opt)

	rep, err := p.Run(context.Background(), recs, SingleMonth(timedataset.NewMonth(2024, 2)))
	require.Nil(t, err)

	summary := rep.Metadata.ModelsSummary["addition hills"]
	require.NotEmpty(t, summary.Candidates)
	assert.Equal(t, "SARIMAX(2,0,1)x(0,1,1,12)", summary.Candidates[0].Model)

	seasonal := 0
	for _, c := range summary.Candidates {
		if c.Model == "SARIMAX(2,0,1)x(0,1,1,12)" {
			seasonal++
		}
	}
	assert.Equal(t, 1, seasonal)
}

func TestRunCanceled(t *testing.T) {
	recs := seasonalRecords("A", timedataset.NewMonth(2022, 1), 24, 3, 1)
	p := newTestPipeline(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, recs, SingleMonth(timedataset.NewMonth(2024, 1)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewInvalidOptions(t *testing.T) {
	opt := NewDefaultOptions()
	opt.Precision = -1
	_, err := New(opt, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidPrecision)

	opt = NewDefaultOptions()
	opt.Forecast.Candidates = forecast.Candidates{}
	_, err = New(opt, nil, nil)
	assert.ErrorIs(t, err, forecast.ErrNoCandidates)
}

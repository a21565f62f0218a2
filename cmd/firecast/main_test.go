package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	firecast "github.com/bfp-analytics/go-firecast"
	"github.com/bfp-analytics/go-firecast/areamodels"
	"github.com/bfp-analytics/go-firecast/ingest"
	"github.com/bfp-analytics/go-firecast/timedataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	targetMonth, startMonth, endMonth = "", "", ""
	months, afterHistory = 0, 0
	inputFile, dsn, outputFile = "", "", "-"
}

func TestFlagHorizon(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	m := timedataset.NewMonth

	testData := map[string]struct {
		set      func()
		expected firecast.Horizon
		ok       bool
	}{
		"none": {
			set: func() {},
		},
		"target": {
			set:      func() { targetMonth = "2025-10" },
			expected: firecast.SingleMonth(m(2025, 10)),
			ok:       true,
		},
		"start and months": {
			set:      func() { startMonth, months = "2025-01", 6 },
			expected: firecast.MonthsFrom(m(2025, 1), 6),
			ok:       true,
		},
		"start defaults to twelve months": {
			set:      func() { startMonth = "2025-01" },
			expected: firecast.MonthsFrom(m(2025, 1), 12),
			ok:       true,
		},
		"end from current month": {
			set:      func() { endMonth = "2025-12" },
			expected: firecast.Between(m(2025, 3), m(2025, 12)),
			ok:       true,
		},
		"after history": {
			set:      func() { afterHistory = 15 },
			expected: firecast.AfterHistoryMonths(15),
			ok:       true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			resetFlags()
			defer resetFlags()
			td.set()

			h, ok, err := flagHorizon(now)
			require.Nil(t, err)
			assert.Equal(t, td.ok, ok)
			assert.Equal(t, td.expected, h)
		})
	}
}

func TestResolveHorizon(t *testing.T) {
	resetFlags()
	defer resetFlags()
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := resolveHorizon(nil, now)
	assert.ErrorIs(t, err, firecast.ErrMissingParameters)

	_, err = resolveHorizon(&ingest.Request{}, now)
	assert.ErrorIs(t, err, firecast.ErrMissingParameters)

	n := 4
	h, err := resolveHorizon(&ingest.Request{AfterHistory: &n}, now)
	require.Nil(t, err)
	assert.Equal(t, firecast.AfterHistoryMonths(4), h)

	targetMonth = "2025-13"
	_, err = resolveHorizon(&ingest.Request{AfterHistory: &n}, now)
	assert.ErrorIs(t, err, timedataset.ErrUnparseableMonth)
}

func TestCountAreas(t *testing.T) {
	records := []timedataset.Record{
		{Area: "Hulo"}, {Area: " Hulo "}, {Area: "Mauway"}, {Area: ""}, {Area: "  "},
	}
	assert.Equal(t, 2, countAreas(records))
}

func TestPrintLookup(t *testing.T) {
	tbl, err := areamodels.Default()
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, printLookup(&buf, tbl, []string{"ADDITION HILLS", "Nowhere"}))
	out := buf.String()
	assert.Contains(t, out, "Addition Hills")
	assert.Contains(t, out, "SARIMAX(2,0,1)x(0,1,1,12)")
	assert.Contains(t, out, "(default)")
	assert.Contains(t, out, "SARIMAX(1,1,1)x(1,0,1,12)")
}

func TestRunForecastCSV(t *testing.T) {
	resetFlags()
	defer resetFlags()

	dir := t.TempDir()
	inputFile = filepath.Join(dir, "history.csv")
	outputFile = filepath.Join(dir, "report.json")
	require.Nil(t, os.WriteFile(inputFile, []byte(
		"BARANGAY,DATE_PERIOD,INCIDENT_COUNT\nHulo,2024-01,2\nHulo,2024-02,0\nHulo,2024-03,1\n",
	), 0o644))
	targetMonth = "2024-05"

	require.Nil(t, runForecast(context.Background()))

	b, err := os.ReadFile(outputFile)
	require.Nil(t, err)
	assert.Contains(t, string(b), `"barangay": "Hulo"`)
	assert.Contains(t, string(b), `"forecast_month": "2024-05-01"`)
}

func TestRunForecastMissingInput(t *testing.T) {
	resetFlags()
	defer resetFlags()
	targetMonth = "2024-05"
	assert.ErrorIs(t, runForecast(context.Background()), firecast.ErrMissingParameters)
}

func TestRootCmdLeavesErrorToMain(t *testing.T) {
	resetFlags()
	defer resetFlags()

	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"forecast", "--target", "2024-05"})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, firecast.ErrMissingParameters)
	assert.Empty(t, buf.String())
}

var errDiskFull = errors.New("disk full")

type closeRecorder struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.closeErr
}

func TestWriteAndClose(t *testing.T) {
	rep := &firecast.Report{Metadata: firecast.Metadata{Horizon: "2024-05"}}

	testData := map[string]struct {
		closeErr error
		err      error
	}{
		"closed":       {},
		"close failed": {closeErr: errDiskFull, err: errDiskFull},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			wc := &closeRecorder{closeErr: td.closeErr}
			err := writeAndClose(wc, rep)
			assert.True(t, wc.closed)
			assert.Contains(t, wc.String(), `"horizon": "2024-05"`)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.Nil(t, err)
		})
	}
}

func TestWriteReportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.Nil(t, writeReport(&firecast.Report{}, path))

	b, err := os.ReadFile(path)
	require.Nil(t, err)
	assert.Contains(t, string(b), `"metadata"`)

	err = writeReport(&firecast.Report{}, filepath.Join(t.TempDir(), "missing", "report.json"))
	assert.NotNil(t, err)
}

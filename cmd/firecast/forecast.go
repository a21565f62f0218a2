package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	firecast "github.com/bfp-analytics/go-firecast"
	"github.com/bfp-analytics/go-firecast/ingest"
	"github.com/bfp-analytics/go-firecast/internal/config"
	"github.com/bfp-analytics/go-firecast/internal/logger"
	"github.com/bfp-analytics/go-firecast/internal/metrics"
	"github.com/bfp-analytics/go-firecast/timedataset"
	"github.com/pkg/profile"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func forecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast incidents for the requested months",
		Long: `Reads historical records from a JSON request, a CSV export or the incident database and
writes the forecast report as JSON. The horizon comes from the flags or, when none are given,
from the JSON request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "JSON request or CSV export of historical records")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Incident database DSN (postgres://, mysql://, mariadb://)")
	cmd.Flags().StringVar(&table, "table", "", "Incident table name (default historical_fires)")
	cmd.Flags().IntVar(&startYear, "start-year", 0, "First year loaded from the database")
	cmd.Flags().IntVar(&endYear, "end-year", 0, "Last year loaded from the database")

	cmd.Flags().StringVar(&targetMonth, "target", "", "Single target month (YYYY-MM)")
	cmd.Flags().StringVar(&startMonth, "start", "", "First forecast month (YYYY-MM)")
	cmd.Flags().IntVar(&months, "months", 0, "Number of months from --start")
	cmd.Flags().StringVar(&endMonth, "end", "", "Last forecast month (YYYY-MM)")
	cmd.Flags().IntVar(&afterHistory, "after-history", 0, "Months after each barangay's last record")

	cmd.Flags().StringVar(&variant, "variant", "", "Preset: monthly, twelve-month, enhanced, history")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Barangays modeled concurrently")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "-", "Report file, - for stdout")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&plotDir, "plot-dir", "", "Write an html forecast plot into this directory")
	cmd.Flags().StringVar(&profileMode, "profile", "", "Profile the run (cpu, mem)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print the model summary to stderr")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show a progress bar")

	return cmd
}

func runForecast(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closer, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", profileMode)
	}

	records, req, err := loadRecords(ctx, cfg, log)
	if err != nil {
		return err
	}
	if req != nil && req.Variant != "" && variant == "" && cfg.Forecast.Variant == "" {
		cfg.Forecast.Variant = req.Variant
	}

	h, err := resolveHorizon(req, time.Now())
	if err != nil {
		return err
	}

	opt, err := cfg.Forecast.Options()
	if err != nil {
		return err
	}
	m := metrics.New()
	p, err := firecast.New(opt, log, m)
	if err != nil {
		return err
	}

	if progress {
		bar := progressbar.Default(int64(countAreas(records)), "forecasting")
		p.OnArea = func(string) { _ = bar.Add(1) }
		defer bar.Finish()
	}

	log.WithFields(logrus.Fields{
		"records": len(records),
		"horizon": h.String(),
		"variant": opt.Variant,
		"workers": opt.Workers,
	}).Info("starting forecast")

	rep, err := run(ctx, p, records, h, cfg.Output.PlotDir)
	if err != nil {
		return err
	}
	m.Finish(time.Now())

	if err := writeReport(rep, outputFile); err != nil {
		return err
	}
	if cfg.Output.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return fmt.Errorf("unable to write metrics, %w", err)
		}
	}
	if summary {
		if err := rep.TablePrint(os.Stderr, "", "  "); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig reads the config file and applies command line overrides on top of it
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if variant != "" {
		cfg.Forecast.Variant = variant
	}
	if workers != 0 {
		cfg.Forecast.Workers = workers
	}
	if dsn != "" {
		cfg.Database.DSN = dsn
	}
	if table != "" {
		cfg.Database.Table = table
	}
	if startYear != 0 {
		cfg.Database.StartYear = startYear
	}
	if endYear != 0 {
		cfg.Database.EndYear = endYear
	}
	if metricsFile != "" {
		cfg.Output.MetricsFile = metricsFile
	}
	if plotDir != "" {
		cfg.Output.PlotDir = plotDir
	}
	return cfg, nil
}

// loadRecords reads historical records from the input file, or the database when no input
// file is given. The request is only returned for JSON input.
func loadRecords(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) ([]timedataset.Record, *ingest.Request, error) {
	switch {
	case inputFile != "":
		f, err := os.Open(inputFile)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open input, %w", err)
		}
		defer f.Close()

		if strings.EqualFold(filepath.Ext(inputFile), ".csv") {
			records, err := ingest.ReadCSV(f)
			return records, nil, err
		}
		req, err := ingest.ReadJSON(f)
		if err != nil {
			return nil, nil, err
		}
		return req.HistoricalData, req, nil

	case cfg.Database.DSN != "":
		src, err := ingest.OpenSQL(ctx, cfg.Database.DSN, cfg.Database.Table)
		if err != nil {
			return nil, nil, err
		}
		defer src.Close()

		records, err := src.Records(ctx, cfg.Database.StartYear, cfg.Database.EndYear)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("rows", len(records)).Info("loaded records from database")
		return records, nil, nil
	}
	return nil, nil, fmt.Errorf("no --input or --dsn, %w", firecast.ErrMissingParameters)
}

// flagHorizon builds the horizon from the command line. The boolean is false when no horizon
// flag was given.
func flagHorizon(now time.Time) (firecast.Horizon, bool, error) {
	switch {
	case targetMonth != "":
		m, err := timedataset.ParseMonth(targetMonth)
		if err != nil {
			return firecast.Horizon{}, true, fmt.Errorf("--target, %w", err)
		}
		return firecast.SingleMonth(m), true, nil

	case startMonth != "" || endMonth != "" || months != 0:
		h := firecast.Horizon{Start: timedataset.MonthOf(now), Months: months}
		if startMonth != "" {
			m, err := timedataset.ParseMonth(startMonth)
			if err != nil {
				return firecast.Horizon{}, true, fmt.Errorf("--start, %w", err)
			}
			h.Start = m
		}
		if endMonth != "" {
			m, err := timedataset.ParseMonth(endMonth)
			if err != nil {
				return firecast.Horizon{}, true, fmt.Errorf("--end, %w", err)
			}
			h.End = m
		}
		if h.Months == 0 && h.End.IsZero() {
			h.Months = ingest.DefaultForecastMonths
		}
		return h, true, nil

	case afterHistory != 0:
		return firecast.AfterHistoryMonths(afterHistory), true, nil
	}
	return firecast.Horizon{}, false, nil
}

func resolveHorizon(req *ingest.Request, now time.Time) (firecast.Horizon, error) {
	h, ok, err := flagHorizon(now)
	if err != nil {
		return firecast.Horizon{}, err
	}
	if ok {
		return h, nil
	}
	if req == nil || !req.HasHorizon() {
		return firecast.Horizon{}, fmt.Errorf("no forecast months requested, %w", firecast.ErrMissingParameters)
	}
	return req.Horizon(now)
}

func run(ctx context.Context, p *firecast.Pipeline, records []timedataset.Record, h firecast.Horizon, dir string) (*firecast.Report, error) {
	if dir == "" {
		return p.Run(ctx, records, h)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create plot directory, %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "forecast.html"))
	if err != nil {
		return nil, fmt.Errorf("unable to create plot, %w", err)
	}
	defer f.Close()
	return p.RunWithPlot(ctx, records, h, f)
}

func writeReport(rep *firecast.Report, path string) error {
	if path == "" || path == "-" {
		return ingest.WriteJSON(os.Stdout, rep)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create output, %w", err)
	}
	return writeAndClose(f, rep)
}

// writeAndClose reports the close error when encoding succeeded
func writeAndClose(wc io.WriteCloser, rep *firecast.Report) error {
	if err := ingest.WriteJSON(wc, rep); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("unable to close output, %w", err)
	}
	return nil
}

// countAreas counts distinct non-empty area names the same way series building groups them
func countAreas(records []timedataset.Record) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		if a := strings.TrimSpace(r.Area); a != "" {
			seen[a] = struct{}{}
		}
	}
	return len(seen)
}

package firecast

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/bfp-analytics/go-firecast/forecast"
	"github.com/bfp-analytics/go-firecast/forecast/util"
	"github.com/bfp-analytics/go-firecast/timedataset"
)

const SummaryNoData = "No data"

// ForecastPoint is the reported forecast of one area for one calendar month
type ForecastPoint struct {
	Area               string  `json:"barangay"`
	Year               int     `json:"year"`
	Month              int     `json:"month"`
	ForecastMonth      string  `json:"forecast_month"`
	Predicted          float64 `json:"predicted_cases"`
	Lower              float64 `json:"lower_bound"`
	Upper              float64 `json:"upper_bound"`
	RiskLevel          string  `json:"risk_level"`
	RiskFlag           *string `json:"risk_flag"`
	ModelUsed          string  `json:"model_used"`
	ConfidenceInterval int     `json:"confidence_interval"`
}

func newForecastPoint(area string, p forecast.Point, labels forecast.RiskLabels, ci, precision int) ForecastPoint {
	fp := ForecastPoint{
		Area:               area,
		Year:               p.Month.Year,
		Month:              int(p.Month.Month),
		ForecastMonth:      p.Month.Time().Format(time.DateOnly),
		Predicted:          util.Round(p.Predicted, precision),
		Lower:              util.Round(p.Lower, precision),
		Upper:              util.Round(p.Upper, precision),
		ModelUsed:          p.ModelUsed,
		ConfidenceInterval: ci,
	}
	// risk uses the unrounded values
	risk := forecast.ClassifyRisk(p.Predicted, p.Upper, labels)
	fp.RiskLevel = risk.Level
	if risk.Flag != "" {
		flag := risk.Flag
		fp.RiskFlag = &flag
	}
	return fp
}

// Key is the calendar month of the point formatted as YYYY-MM
func (p ForecastPoint) Key() string {
	return timedataset.NewMonth(p.Year, p.Month).String()
}

// Metadata describes a pipeline run
type Metadata struct {
	GeneratedAt         time.Time                   `json:"generated_at"`
	Variant             Variant                     `json:"variant"`
	Horizon             string                      `json:"horizon"`
	TotalAreas          int                         `json:"total_barangays"`
	SuccessfulForecasts int                         `json:"successful_forecasts"`
	TotalPredictions    int                         `json:"total_predictions"`
	DroppedRecords      int                         `json:"dropped_records"`
	ModelsSummary       map[string]forecast.Summary `json:"models_summary"`
}

// Report is the output of a pipeline run. Forecasts are ordered by area and then month.
type Report struct {
	Forecasts        []ForecastPoint            `json:"forecasts"`
	ForecastsByMonth map[string][]ForecastPoint `json:"forecasts_by_month,omitempty"`
	Metadata         Metadata                   `json:"metadata"`
}

func groupByMonth(points []ForecastPoint) map[string][]ForecastPoint {
	out := make(map[string][]ForecastPoint)
	for _, p := range points {
		k := p.Key()
		out[k] = append(out[k], p)
	}
	return out
}

// Areas lists the summarized areas in sorted order
func (r *Report) Areas() []string {
	areas := make([]string, 0, len(r.Metadata.ModelsSummary))
	for a := range r.Metadata.ModelsSummary {
		areas = append(areas, a)
	}
	sort.Strings(areas)
	return areas
}

// AreaForecasts returns the forecast points of a single area
func (r *Report) AreaForecasts(area string) []ForecastPoint {
	var out []ForecastPoint
	for _, p := range r.Forecasts {
		if p.Area == area {
			out = append(out, p)
		}
	}
	return out
}

// TablePrint writes the model summary of every area
func (r *Report) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%sForecast %s, %d of %d areas modeled, %d predictions\n",
		prefix, r.Metadata.Horizon, r.Metadata.SuccessfulForecasts, r.Metadata.TotalAreas,
		r.Metadata.TotalPredictions); err != nil {
		return err
	}
	for _, area := range r.Areas() {
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, util.IndentExpand(indent, 1), area); err != nil {
			return err
		}
		if err := r.Metadata.ModelsSummary[area].TablePrint(w, prefix+util.IndentExpand(indent, 2), indent); err != nil {
			return err
		}
	}
	return nil
}

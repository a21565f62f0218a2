// Package ingest reads historical incident records and forecast requests from JSON requests,
// CSV exports and the incident database, and writes reports back out as JSON.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	firecast "github.com/bfp-analytics/go-firecast"
	"github.com/bfp-analytics/go-firecast/timedataset"
	"github.com/goccy/go-json"
)

const DefaultForecastMonths = 12

var (
	ErrMissingColumn   = errors.New("missing required column")
	ErrUnsupportedDSN  = errors.New("unsupported database dsn")
	ErrIncompleteDSN   = errors.New("dsn needs a user, host and database")
	ErrInvalidTable    = errors.New("invalid table name")
	ErrInvalidRequest  = errors.New("invalid forecast request")
	ErrInvalidYearSpan = errors.New("end year before start year")
)

// Request is a forecast request. The horizon may be given as a single target month, a start
// month with an optional month count, a forecast window bounded by a target date, or a number
// of months after each area's history.
type Request struct {
	HistoricalData []timedataset.Record `json:"historical_data"`

	TargetYear  *int `json:"target_year,omitempty"`
	TargetMonth *int `json:"target_month,omitempty"`

	StartYear  *int `json:"start_year,omitempty"`
	StartMonth *int `json:"start_month,omitempty"`

	ForecastMonths *int   `json:"forecast_months,omitempty"`
	ForecastStart  string `json:"forecast_start,omitempty"`
	TargetDate     string `json:"target_date,omitempty"`

	AfterHistory *int `json:"after_history_months,omitempty"`

	Variant string `json:"variant,omitempty"`
}

// ReadJSON decodes a request. A bare array of records is accepted as a request without a
// horizon.
func ReadJSON(r io.Reader) (*Request, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read request, %w", err)
	}

	var req Request
	if trimmed := strings.TrimSpace(string(b)); strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(b, &req.HistoricalData); err != nil {
			return nil, fmt.Errorf("unable to decode records, %s, %w", err.Error(), ErrInvalidRequest)
		}
		return &req, nil
	}
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("unable to decode request, %s, %w", err.Error(), ErrInvalidRequest)
	}
	return &req, nil
}

// HasHorizon reports whether any horizon field was set
func (r *Request) HasHorizon() bool {
	return r.TargetYear != nil || r.TargetMonth != nil ||
		r.StartYear != nil || r.StartMonth != nil ||
		r.ForecastMonths != nil || r.ForecastStart != "" || r.TargetDate != "" ||
		r.AfterHistory != nil
}

// Horizon resolves the requested months. The single target form takes precedence, then the
// start year and month, then the forecast window which starts at now's month unless
// forecast_start is given. A request without horizon fields returns firecast.ErrNoHorizon.
func (r *Request) Horizon(now time.Time) (firecast.Horizon, error) {
	months := DefaultForecastMonths
	if r.ForecastMonths != nil {
		months = *r.ForecastMonths
	}

	switch {
	case r.TargetYear != nil || r.TargetMonth != nil:
		if r.TargetYear == nil || r.TargetMonth == nil {
			return firecast.Horizon{}, fmt.Errorf("target needs both year and month, %w", ErrInvalidRequest)
		}
		return firecast.SingleMonth(timedataset.NewMonth(*r.TargetYear, *r.TargetMonth)), nil

	case r.StartYear != nil || r.StartMonth != nil:
		if r.StartYear == nil || r.StartMonth == nil {
			return firecast.Horizon{}, fmt.Errorf("start needs both year and month, %w", ErrInvalidRequest)
		}
		return firecast.MonthsFrom(timedataset.NewMonth(*r.StartYear, *r.StartMonth), months), nil

	case r.ForecastMonths != nil || r.ForecastStart != "" || r.TargetDate != "":
		h := firecast.MonthsFrom(timedataset.MonthOf(now), months)
		if r.ForecastStart != "" {
			start, err := timedataset.ParseMonth(r.ForecastStart)
			if err != nil {
				return firecast.Horizon{}, fmt.Errorf("forecast_start, %w", err)
			}
			h.Start = start
		}
		if r.TargetDate != "" {
			end, err := timedataset.ParseMonth(r.TargetDate)
			if err != nil {
				return firecast.Horizon{}, fmt.Errorf("target_date, %w", err)
			}
			h.End = end
		}
		return h, nil

	case r.AfterHistory != nil:
		return firecast.AfterHistoryMonths(*r.AfterHistory), nil
	}
	return firecast.Horizon{}, firecast.ErrNoHorizon
}

// WriteJSON writes the report as indented JSON
func WriteJSON(w io.Writer, rep *firecast.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("unable to encode report, %w", err)
	}
	return nil
}

package firecast

import (
	"fmt"

	"github.com/bfp-analytics/go-firecast/areamodels"
	"github.com/bfp-analytics/go-firecast/forecast"
	"github.com/bfp-analytics/go-firecast/models"
)

// Variant names a preset reproducing one of the established report flavours.
type Variant string

const (
	// VariantMonthly forecasts a single target month with one fixed ARIMA order, keeping the
	// seasonal model only as a backup.
	VariantMonthly Variant = "monthly"

	// VariantTwelveMonth forecasts a run of months on log1p counts, preferring seasonal models.
	VariantTwelveMonth Variant = "twelve-month"

	// VariantEnhanced forecasts on square root counts with a hold-out validation window.
	VariantEnhanced Variant = "enhanced"

	// VariantHistory forecasts a fixed number of months after each area's history.
	VariantHistory Variant = "history"

	// VariantCustom marks options that were assembled by hand.
	VariantCustom Variant = "custom"
)

const (
	DefaultPrecision = 3
	DefaultWorkers   = 1
)

// Options configures a Pipeline. The forecast options drive per area modeling and the rest
// shapes the report.
type Options struct {
	Forecast   *forecast.Options   `json:"forecast" yaml:"forecast"`
	RiskLabels forecast.RiskLabels `json:"risk_labels" yaml:"risk_labels"`

	// Precision is the number of decimals kept in the reported values
	Precision int `json:"precision" yaml:"precision"`

	// Workers bounds how many areas are modeled concurrently
	Workers int `json:"workers" yaml:"workers"`

	// UseAreaModels tries each area's tuned order before the preset candidates of its family
	UseAreaModels bool              `json:"use_area_models" yaml:"use_area_models"`
	AreaModels    *areamodels.Table `json:"-" yaml:"-"`

	// GroupByMonth additionally indexes the forecasts by calendar month in the report
	GroupByMonth bool `json:"group_by_month" yaml:"group_by_month"`

	Variant Variant `json:"variant" yaml:"variant"`
}

// NewDefaultOptions returns the twelve month preset.
func NewDefaultOptions() *Options {
	opt, _ := NewVariantOptions(VariantTwelveMonth)
	return opt
}

// ParseVariant resolves a preset name. An empty name selects the twelve month preset.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case "":
		return VariantTwelveMonth, nil
	case VariantMonthly, VariantTwelveMonth, VariantEnhanced, VariantHistory:
		return v, nil
	default:
		return "", fmt.Errorf("%q, %w", s, ErrUnknownVariant)
	}
}

// NewVariantOptions returns the preset options of a named variant.
func NewVariantOptions(v Variant) (*Options, error) {
	fo := forecast.NewDefaultOptions()
	opt := &Options{
		Forecast:   fo,
		RiskLabels: forecast.LabelsColab,
		Precision:  DefaultPrecision,
		Workers:    DefaultWorkers,
		Variant:    v,
	}

	switch v {
	case VariantMonthly:
		fo.Transform = forecast.TransformIdentity
		fo.Policy = forecast.PolicyPreferPlain
		fo.Candidates = forecast.Candidates{
			Seasonal: []models.Spec{models.SeasonalSpec(1, 1, 1, 1, 1, 1, 12)},
			Plain:    []models.Spec{models.ARIMASpec(1, 1, 1)},
		}
	case VariantTwelveMonth, "":
		opt.Variant = VariantTwelveMonth
		opt.GroupByMonth = true
		fo.Policy = forecast.PolicyPreferSeasonal
		fo.Candidates = forecast.Candidates{
			Seasonal: []models.Spec{
				models.SeasonalSpec(1, 0, 1, 1, 0, 1, 12),
				models.SeasonalSpec(1, 1, 1, 1, 0, 1, 12),
				models.SeasonalSpec(2, 0, 1, 0, 1, 1, 12),
			},
			Plain: []models.Spec{
				models.ARIMASpec(1, 0, 1),
				models.ARIMASpec(2, 0, 1),
				models.ARIMASpec(1, 0, 2),
			},
		}
	case VariantEnhanced:
		opt.RiskLabels = forecast.LabelsEnhanced
		opt.Precision = 6
		fo.Transform = forecast.TransformSqrt
		fo.Policy = forecast.PolicyPreferSeasonal
		fo.MinMonths = 24
		fo.ValidationMonths = 6
		fo.Candidates = forecast.Candidates{
			Seasonal: []models.Spec{
				models.SeasonalSpec(1, 0, 1, 1, 0, 1, 12),
				models.SeasonalSpec(1, 1, 1, 1, 0, 1, 12),
				models.SeasonalSpec(2, 0, 1, 0, 1, 1, 12),
				models.SeasonalSpec(1, 0, 0, 1, 0, 0, 12),
			},
			Plain: []models.Spec{
				models.ARIMASpec(1, 0, 1),
				models.ARIMASpec(2, 0, 1),
				models.ARIMASpec(1, 0, 2),
				models.ARIMASpec(1, 0, 0),
			},
		}
	case VariantHistory:
		fo.Policy = forecast.PolicyCriterion
		fo.MinMonths = 24
		fo.Candidates = forecast.Candidates{
			Seasonal: []models.Spec{
				models.SeasonalSpec(1, 0, 1, 1, 0, 1, 12),
				models.SeasonalSpec(1, 1, 1, 1, 0, 1, 12),
				models.SeasonalSpec(2, 0, 1, 0, 1, 1, 12),
			},
			Plain: []models.Spec{
				models.ARIMASpec(1, 0, 1),
				models.ARIMASpec(2, 0, 1),
				models.ARIMASpec(1, 0, 2),
			},
		}
	default:
		return nil, fmt.Errorf("%q, %w", v, ErrUnknownVariant)
	}
	return opt, nil
}

// Validate returns a normalized copy of the options. A nil receiver yields the defaults.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	opt := *o

	fo, err := o.Forecast.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid forecast options, %w", err)
	}
	opt.Forecast = fo

	if opt.Precision < 0 {
		return nil, fmt.Errorf("precision %d, %w", opt.Precision, ErrInvalidPrecision)
	}
	if opt.Workers < 1 {
		opt.Workers = DefaultWorkers
	}
	if opt.Variant == "" {
		opt.Variant = VariantCustom
	}
	if opt.UseAreaModels && opt.AreaModels == nil {
		tbl, err := areamodels.Default()
		if err != nil {
			return nil, fmt.Errorf("unable to load area models, %w", err)
		}
		opt.AreaModels = tbl
	}
	return &opt, nil
}

// ConfidenceLevel is the two sided coverage of the reported bounds as a whole percentage.
func (o *Options) ConfidenceLevel() int {
	alpha := forecast.DefaultAlpha
	if o != nil && o.Forecast != nil && o.Forecast.Alpha > 0 {
		alpha = o.Forecast.Alpha
	}
	return int((1-alpha)*100 + 0.5)
}

// forecastOptions returns the forecast options for one area, with the area's tuned order
// placed first among the candidates of its family when area models are enabled.
func (o *Options) forecastOptions(area string) (*forecast.Options, areamodels.Match, bool) {
	if !o.UseAreaModels || o.AreaModels == nil {
		return o.Forecast, areamodels.Match{}, false
	}
	match := o.AreaModels.Lookup(area)

	fo := *o.Forecast
	fo.Candidates = o.Forecast.Candidates.Copy()
	if match.Spec.IsSeasonal() {
		fo.Candidates.Seasonal = prependSpec(match.Spec, fo.Candidates.Seasonal)
	} else {
		fo.Candidates.Plain = prependSpec(match.Spec, fo.Candidates.Plain)
	}
	return &fo, match, true
}

func prependSpec(first models.Spec, specs []models.Spec) []models.Spec {
	out := make([]models.Spec, 0, len(specs)+1)
	out = append(out, first)
	for _, s := range specs {
		if s.String() != first.String() {
			out = append(out, s)
		}
	}
	return out
}

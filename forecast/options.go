package forecast

import (
	"fmt"

	"github.com/bfp-analytics/go-firecast/models"
)

const (
	DefaultAlpha = 0.05
)

// Options configures how a single area's series is modeled and when the mean fallback is used.
type Options struct {
	Transform  Transform        `json:"transform" yaml:"transform"`
	Candidates Candidates       `json:"candidates" yaml:"candidates"`
	Policy     SelectionPolicy  `json:"policy" yaml:"policy"`
	Criterion  models.Criterion `json:"criterion" yaml:"criterion"`

	// MinMonths and MinNonZero are the history thresholds below which the mean fallback is
	// used instead of fitting any model
	MinMonths  int `json:"min_months" yaml:"min_months"`
	MinNonZero int `json:"min_nonzero" yaml:"min_nonzero"`

	// ValidationMonths holds out the most recent months during selection to score the winner
	// before refitting it on the full history. Zero disables validation.
	ValidationMonths int `json:"validation_months" yaml:"validation_months"`

	// Alpha is the significance level of the two sided interval, 0.05 gives 95% bounds
	Alpha float64 `json:"alpha" yaml:"alpha"`
}

// NewDefaultOptions returns the log1p transform with a small mixed candidate set selected by
// lowest AIC.
func NewDefaultOptions() *Options {
	return &Options{
		Transform: TransformLog1p,
		Candidates: Candidates{
			Seasonal: []models.Spec{
				models.SeasonalSpec(1, 0, 1, 1, 0, 1, 12),
				models.SeasonalSpec(1, 1, 1, 1, 0, 1, 12),
				models.SeasonalSpec(1, 0, 0, 1, 0, 0, 12),
			},
			Plain: []models.Spec{
				models.ARIMASpec(1, 0, 1),
				models.ARIMASpec(2, 0, 1),
				models.ARIMASpec(1, 1, 1),
			},
		},
		Policy:     PolicyCriterion,
		Criterion:  models.CriterionAIC,
		MinMonths:  6,
		MinNonZero: 3,
		Alpha:      DefaultAlpha,
	}
}

// Validate returns a normalized copy of the options. A nil receiver yields the defaults.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	opt := *o
	opt.Candidates = o.Candidates.Copy()

	if opt.Transform == "" {
		opt.Transform = TransformIdentity
	}
	if err := opt.Transform.Validate(); err != nil {
		return nil, err
	}
	if opt.Policy == "" {
		opt.Policy = PolicyCriterion
	}
	if err := opt.Policy.Validate(); err != nil {
		return nil, err
	}
	c, err := models.ParseCriterion(string(opt.Criterion))
	if err != nil {
		return nil, err
	}
	opt.Criterion = c

	if opt.Candidates.Len() == 0 {
		return nil, ErrNoCandidates
	}
	for _, spec := range append(append([]models.Spec(nil), opt.Candidates.Seasonal...), opt.Candidates.Plain...) {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("invalid candidate, %w", err)
		}
	}
	for _, spec := range opt.Candidates.Seasonal {
		if !spec.IsSeasonal() {
			return nil, fmt.Errorf("%s listed as seasonal, %w", spec, models.ErrInvalidOrder)
		}
	}
	for _, spec := range opt.Candidates.Plain {
		if spec.IsSeasonal() {
			return nil, fmt.Errorf("%s listed as plain, %w", spec, models.ErrInvalidOrder)
		}
	}

	if opt.MinMonths < 1 {
		return nil, fmt.Errorf("min months %d, %w", opt.MinMonths, ErrInvalidThreshold)
	}
	if opt.MinNonZero < 0 {
		return nil, fmt.Errorf("min non-zero months %d, %w", opt.MinNonZero, ErrInvalidThreshold)
	}
	if opt.ValidationMonths < 0 {
		return nil, fmt.Errorf("validation months %d, %w", opt.ValidationMonths, ErrInvalidValidation)
	}
	if opt.Alpha == 0 {
		opt.Alpha = DefaultAlpha
	}
	if opt.Alpha <= 0 || opt.Alpha >= 1 {
		return nil, fmt.Errorf("alpha %g, %w", opt.Alpha, ErrInvalidAlpha)
	}
	return &opt, nil
}

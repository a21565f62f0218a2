package forecast

import (
	"fmt"
	"math"

	"github.com/bfp-analytics/go-firecast/models"
)

// FitOutcome is the result of fitting a single candidate. A nil Err means the candidate was
// fitted and Score holds its information criterion.
type FitOutcome struct {
	Spec  models.Spec
	Model models.Model
	Score float64
	Err   error
}

func (f FitOutcome) Fitted() bool {
	return f.Err == nil && f.Model != nil
}

// FitCandidate fits one candidate specification to an already transformed series, leaving the
// first conditioning observations out of its likelihood. It never returns an error or panics,
// every failure is reported in the outcome.
func FitCandidate(spec models.Spec, y []float64, criterion models.Criterion, conditioning int) (out FitOutcome) {
	out.Spec = spec
	out.Score = math.Inf(1)

	defer func() {
		if r := recover(); r != nil {
			out.Model = nil
			out.Score = math.Inf(1)
			out.Err = fmt.Errorf("%s, %v, %w", spec, r, ErrCandidatePanicked)
		}
	}()

	opt := models.NewDefaultSARIMAOptions(spec)
	opt.Conditioning = conditioning
	model, err := models.NewSARIMA(opt)
	if err != nil {
		out.Err = err
		return out
	}
	if err := model.Fit(y); err != nil {
		out.Err = err
		return out
	}

	score := model.Score(criterion)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		out.Err = fmt.Errorf("%s scored %v, %w", spec, score, models.ErrNonFinite)
		return out
	}
	out.Model = model
	out.Score = score
	return out
}

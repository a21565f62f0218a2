package forecast

import (
	"fmt"
	"strings"

	"github.com/bfp-analytics/go-firecast/models"
)

// SelectionPolicy decides between the best seasonal and best plain candidate
type SelectionPolicy string

const (
	// PolicyCriterion picks whichever family scored lower. A single successful family wins by
	// default.
	PolicyCriterion SelectionPolicy = "criterion"

	// PolicyPreferSeasonal picks the best seasonal candidate whenever any seasonal candidate
	// fitted, regardless of score.
	PolicyPreferSeasonal SelectionPolicy = "prefer-seasonal"

	// PolicyPreferPlain picks the best plain candidate whenever any plain candidate fitted.
	PolicyPreferPlain SelectionPolicy = "prefer-plain"
)

func ParsePolicy(s string) (SelectionPolicy, error) {
	switch p := SelectionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyCriterion, PolicyPreferSeasonal, PolicyPreferPlain:
		return p, nil
	case "":
		return PolicyCriterion, nil
	default:
		return "", fmt.Errorf("%q, %w", s, ErrUnknownPolicy)
	}
}

func (p SelectionPolicy) Validate() error {
	switch p {
	case PolicyCriterion, PolicyPreferSeasonal, PolicyPreferPlain:
		return nil
	default:
		return fmt.Errorf("%q, %w", string(p), ErrUnknownPolicy)
	}
}

// Candidates are the hand enumerated model specifications tried per family, in order.
type Candidates struct {
	Seasonal []models.Spec `json:"seasonal" yaml:"seasonal"`
	Plain    []models.Spec `json:"plain" yaml:"plain"`
}

func (c Candidates) Len() int {
	return len(c.Seasonal) + len(c.Plain)
}

// All lists the seasonal candidates followed by the plain ones
func (c Candidates) All() []models.Spec {
	all := make([]models.Spec, 0, c.Len())
	all = append(all, c.Seasonal...)
	return append(all, c.Plain...)
}

// Copy returns a deep copy so callers can prepend candidates without sharing backing arrays
func (c Candidates) Copy() Candidates {
	return Candidates{
		Seasonal: append([]models.Spec(nil), c.Seasonal...),
		Plain:    append([]models.Spec(nil), c.Plain...),
	}
}

// Selection is the outcome of running every candidate. Best is nil when no candidate in
// either family fitted.
type Selection struct {
	Best         *FitOutcome
	BestSeasonal *FitOutcome
	BestPlain    *FitOutcome
	Outcomes     []FitOutcome

	// Conditioning is the number of leading observations every candidate left out of its
	// likelihood, so all scores cover the same observations.
	Conditioning int
}

func (s Selection) NoModel() bool {
	return s.Best == nil
}

// Select fits every seasonal then every plain candidate on a common conditioning window, keeps
// the lowest scoring success per family and applies the policy. Ties keep the first candidate
// seen.
func Select(y []float64, cands Candidates, policy SelectionPolicy, criterion models.Criterion) Selection {
	var sel Selection
	sel.Outcomes = make([]FitOutcome, 0, cands.Len())
	sel.Conditioning = models.CommonConditioning(len(y), cands.All())

	run := func(specs []models.Spec) *FitOutcome {
		var best *FitOutcome
		for _, spec := range specs {
			out := FitCandidate(spec, y, criterion, sel.Conditioning)
			sel.Outcomes = append(sel.Outcomes, out)
			if !out.Fitted() {
				continue
			}
			if best == nil || out.Score < best.Score {
				o := out
				best = &o
			}
		}
		return best
	}
	sel.BestSeasonal = run(cands.Seasonal)
	sel.BestPlain = run(cands.Plain)
	sel.Best = choose(sel.BestSeasonal, sel.BestPlain, policy)
	return sel
}

func choose(seasonal, plain *FitOutcome, policy SelectionPolicy) *FitOutcome {
	switch {
	case seasonal == nil:
		return plain
	case plain == nil:
		return seasonal
	}

	switch policy {
	case PolicyPreferSeasonal:
		return seasonal
	case PolicyPreferPlain:
		return plain
	default:
		if plain.Score < seasonal.Score {
			return plain
		}
		return seasonal
	}
}

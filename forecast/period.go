package forecast

import (
	"fmt"

	"github.com/bfp-analytics/go-firecast/timedataset"
)

// StepMonth converts a zero based forecast step into its calendar month. Step 0 is the month
// right after the last historical month.
func StepMonth(last timedataset.Month, step int) timedataset.Month {
	return last.AddMonths(step + 1)
}

// MonthStep converts a calendar month into a zero based forecast step. Months at or before the
// last historical month give a negative step.
func MonthStep(last, target timedataset.Month) int {
	return target.Sub(last) - 1
}

// Horizon returns how many steps must be forecast after the last historical month to cover
// the furthest target. Zero means every target is already observed or earlier.
func Horizon(last timedataset.Month, targets []timedataset.Month) (int, error) {
	furthest, err := timedataset.MonthSlice(targets).Latest()
	if err != nil {
		return 0, fmt.Errorf("%w, %w", ErrNoTargets, err)
	}
	steps := furthest.Sub(last)
	if steps < 0 {
		return 0, nil
	}
	return steps, nil
}

// ForecastMonths lists the calendar months covered by a forecast of the given steps.
func ForecastMonths(last timedataset.Month, steps int) timedataset.MonthSlice {
	if steps <= 0 {
		return timedataset.MonthSlice{}
	}
	return timedataset.Range(StepMonth(last, 0), StepMonth(last, steps-1))
}

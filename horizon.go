package firecast

import (
	"fmt"

	"github.com/bfp-analytics/go-firecast/timedataset"
)

// Horizon describes which calendar months are requested. Either AfterHistory is set, in which
// case every area gets the months right after its own last observation, or Start is set with a
// month count, an inclusive end month, or both. When both are set the earlier bound wins.
type Horizon struct {
	Start        timedataset.Month `json:"start,omitempty"`
	End          timedataset.Month `json:"end,omitempty"`
	Months       int               `json:"months,omitempty"`
	AfterHistory int               `json:"after_history,omitempty"`
}

// SingleMonth requests one target month.
func SingleMonth(m timedataset.Month) Horizon {
	return Horizon{Start: m, Months: 1}
}

// MonthsFrom requests n consecutive months beginning at start.
func MonthsFrom(start timedataset.Month, n int) Horizon {
	return Horizon{Start: start, Months: n}
}

// Between requests every month from start through end.
func Between(start, end timedataset.Month) Horizon {
	return Horizon{Start: start, End: end}
}

// AfterHistoryMonths requests n months after each area's last historical month.
func AfterHistoryMonths(n int) Horizon {
	return Horizon{AfterHistory: n}
}

func (h Horizon) Validate() error {
	if h.AfterHistory < 0 || h.Months < 0 {
		return fmt.Errorf("negative month count, %w", ErrInvalidHorizon)
	}
	if h.AfterHistory > 0 {
		return nil
	}
	if h.Start.IsZero() {
		return ErrNoHorizon
	}
	if h.Months == 0 && h.End.IsZero() {
		return fmt.Errorf("start %s has no month count or end, %w", h.Start, ErrNoHorizon)
	}
	if !h.End.IsZero() && h.End.Before(h.Start) {
		return fmt.Errorf("end %s before start %s, %w", h.End, h.Start, ErrInvalidHorizon)
	}
	return nil
}

// Targets lists the requested months for an area whose history ends at last.
func (h Horizon) Targets(last timedataset.Month) timedataset.MonthSlice {
	if h.AfterHistory > 0 {
		return timedataset.Range(last.AddMonths(1), last.AddMonths(h.AfterHistory))
	}
	if h.Start.IsZero() {
		return timedataset.MonthSlice{}
	}

	end := h.End
	if h.Months > 0 {
		byCount := h.Start.AddMonths(h.Months - 1)
		if end.IsZero() || byCount.Before(end) {
			end = byCount
		}
	}
	return timedataset.Range(h.Start, end)
}

func (h Horizon) String() string {
	switch {
	case h.AfterHistory > 0:
		return fmt.Sprintf("%d months after history", h.AfterHistory)
	case h.Months == 1 && h.End.IsZero():
		return h.Start.String()
	case h.End.IsZero():
		return fmt.Sprintf("%d months from %s", h.Months, h.Start)
	case h.Months == 0:
		return fmt.Sprintf("%s to %s", h.Start, h.End)
	default:
		return fmt.Sprintf("%d months from %s until %s", h.Months, h.Start, h.End)
	}
}

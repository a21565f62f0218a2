package timedataset

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnparseableMonth = errors.New("unable to parse month")
	ErrEmptyMonthSlice  = errors.New("no months in slice")
)

// monthLayouts are attempted in order after the "YYYY-MM" period form.
var monthLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006/01/02",
	"2006/01",
	"01/02/2006",
	"Jan 2006",
	"January 2006",
}

// Month is a calendar month without a day or time component. All arithmetic is done in whole
// months so it is safe across variable month lengths.
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth returns the month for the given year and month number. Month numbers outside of
// 1-12 roll over into neighbouring years, e.g. month 13 is January of the following year and
// month 0 is December of the previous year.
func NewMonth(year, month int) Month {
	return monthFromIndex(year*12 + month - 1)
}

// MonthOf truncates a time to its calendar month in the time's own location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth accepts "YYYY-MM" period strings as well as common date and timestamp layouts,
// returning the calendar month the value falls in.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Month{}, fmt.Errorf("empty value, %w", ErrUnparseableMonth)
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		return MonthOf(t), nil
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthOf(t), nil
		}
	}
	return Month{}, fmt.Errorf("%q, %w", s, ErrUnparseableMonth)
}

func monthFromIndex(idx int) Month {
	year := idx / 12
	m := idx % 12
	if m < 0 {
		m += 12
		year--
	}
	return Month{Year: year, Month: time.Month(m + 1)}
}

func (m Month) index() int {
	return m.Year*12 + int(m.Month) - 1
}

// AddMonths shifts the month by n whole months, n may be negative.
func (m Month) AddMonths(n int) Month {
	return monthFromIndex(m.index() + n)
}

// Sub returns the number of whole months from o to m, i.e. m - o.
func (m Month) Sub(o Month) int {
	return m.index() - o.index()
}

func (m Month) Before(o Month) bool {
	return m.index() < o.index()
}

func (m Month) After(o Month) bool {
	return m.index() > o.index()
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Time returns midnight UTC on the first day of the month.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MonthSlice is an ordered collection of months
type MonthSlice []Month

func (t MonthSlice) StartMonth() Month {
	var start Month
	if len(t) < 1 {
		return start
	}
	return t[0]
}

func (t MonthSlice) EndMonth() Month {
	var end Month
	if len(t) < 1 {
		return end
	}
	return t[len(t)-1]
}

// Latest returns the furthest month regardless of ordering.
func (t MonthSlice) Latest() (Month, error) {
	if len(t) == 0 {
		return Month{}, ErrEmptyMonthSlice
	}
	latest := t[0]
	for _, m := range t[1:] {
		if m.After(latest) {
			latest = m
		}
	}
	return latest, nil
}

// IsContiguous reports whether every month follows the previous one by exactly one month.
func (t MonthSlice) IsContiguous() bool {
	for i := 1; i < len(t); i++ {
		if t[i].Sub(t[i-1]) != 1 {
			return false
		}
	}
	return true
}

// Range returns the inclusive run of months from start to end. An empty slice is returned
// when end is before start.
func Range(start, end Month) MonthSlice {
	n := end.Sub(start) + 1
	if n <= 0 {
		return MonthSlice{}
	}
	out := make(MonthSlice, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start.AddMonths(i))
	}
	return out
}

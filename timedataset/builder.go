package timedataset

import (
	"math"
	"sort"
	"strings"
)

// Record is a single historical observation of incidents for an area. Multiple records may
// share an area and month, in which case they are summed.
type Record struct {
	Area          string  `json:"barangay"`
	Date          string  `json:"date"`
	IncidentCount float64 `json:"incident_count"`
}

// AreaSeries pairs an area with its monthly series. Series is nil when none of the area's
// records carried a usable date.
type AreaSeries struct {
	Area   string
	Series *TimeDataset
}

// BuildResult is the output of BuildMonthly with areas sorted by name.
type BuildResult struct {
	Areas   []AreaSeries
	Dropped int
}

// Area returns the series for a named area
func (b BuildResult) Area(name string) (*TimeDataset, bool) {
	for _, a := range b.Areas {
		if a.Area == name {
			return a.Series, true
		}
	}
	return nil, false
}

// BuildMonthly groups records by area, sums records falling in the same month and fills every
// month between an area's first and last observation, inserting zeros where nothing was
// recorded. Records whose date cannot be parsed, or whose count is negative or NaN, are
// dropped and only reflected in the Dropped count.
func BuildMonthly(records []Record) BuildResult {
	type bucket map[Month]float64

	buckets := make(map[string]bucket)
	var dropped int
	for _, r := range records {
		area := strings.TrimSpace(r.Area)
		if area == "" {
			dropped++
			continue
		}
		b, exists := buckets[area]
		if !exists {
			b = make(bucket)
			buckets[area] = b
		}
		if math.IsNaN(r.IncidentCount) || math.IsInf(r.IncidentCount, 0) || r.IncidentCount < 0 {
			dropped++
			continue
		}
		m, err := ParseMonth(r.Date)
		if err != nil {
			dropped++
			continue
		}
		b[m] += r.IncidentCount
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	res := BuildResult{
		Areas:   make([]AreaSeries, 0, len(names)),
		Dropped: dropped,
	}
	for _, name := range names {
		res.Areas = append(res.Areas, AreaSeries{
			Area:   name,
			Series: fillMonthly(buckets[name]),
		})
	}
	return res
}

func fillMonthly(counts map[Month]float64) *TimeDataset {
	if len(counts) == 0 {
		return nil
	}
	var first, last Month
	init := false
	for m := range counts {
		if !init {
			first, last = m, m
			init = true
			continue
		}
		if m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}

	t := Range(first, last)
	y := make([]float64, len(t))
	for i, m := range t {
		y[i] = counts[m]
	}
	return &TimeDataset{T: t, Y: y}
}

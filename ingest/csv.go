package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/bfp-analytics/go-firecast/timedataset"
)

var csvColumns = map[string][]string{
	"area":  {"barangay", "area"},
	"date":  {"date_period", "date", "month"},
	"count": {"incident_count", "count", "incidents"},
}

// ReadCSV reads records from a CSV export with a header row. Column names are matched without
// regard to case, so the BARANGAY, DATE_PERIOD, INCIDENT_COUNT export and the lower case JSON
// field names both work. Counts that fail to parse are kept as NaN so series building drops
// and reports them like any other unusable record.
func ReadCSV(r io.Reader) ([]timedataset.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read csv header, %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []timedataset.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read csv row, %w", err)
		}
		records = append(records, timedataset.Record{
			Area:          field(row, idx["area"]),
			Date:          field(row, idx["date"]),
			IncidentCount: parseCount(field(row, idx["count"])),
		})
	}
	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(csvColumns))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for key, names := range csvColumns {
			if _, ok := idx[key]; ok {
				continue
			}
			for _, n := range names {
				if name == n {
					idx[key] = i
				}
			}
		}
	}
	for _, key := range []string{"area", "date", "count"} {
		if _, ok := idx[key]; !ok {
			return nil, fmt.Errorf("%s column, %w", key, ErrMissingColumn)
		}
	}
	return idx, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseCount(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

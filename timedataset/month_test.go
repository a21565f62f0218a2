package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMonthRollover(t *testing.T) {
	testData := map[string]struct {
		year     int
		month    int
		expected Month
	}{
		"regular":        {2024, 5, Month{2024, time.May}},
		"thirteen":       {2024, 13, Month{2025, time.January}},
		"zero":           {2024, 0, Month{2023, time.December}},
		"negative":       {2024, -11, Month{2023, time.January}},
		"twenty five":    {2024, 25, Month{2026, time.January}},
		"negative whole": {2024, -12, Month{2022, time.December}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, NewMonth(td.year, td.month))
		})
	}
}

func TestMonthArithmetic(t *testing.T) {
	m := NewMonth(2023, 11)
	assert.Equal(t, NewMonth(2024, 2), m.AddMonths(3))
	assert.Equal(t, NewMonth(2022, 12), m.AddMonths(-11))
	assert.Equal(t, 3, NewMonth(2024, 2).Sub(m))
	assert.Equal(t, -3, m.Sub(NewMonth(2024, 2)))
	assert.Equal(t, 13, NewMonth(2025, 1).Sub(NewMonth(2023, 12)))
	assert.True(t, m.Before(NewMonth(2023, 12)))
	assert.True(t, m.After(NewMonth(2022, 12)))
	assert.False(t, m.IsZero())
	assert.True(t, Month{}.IsZero())
	assert.Equal(t, "2023-11", m.String())
	assert.Equal(t, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), m.Time())
}

func TestParseMonth(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected Month
		err      error
	}{
		"period":         {input: "2024-03", expected: NewMonth(2024, 3)},
		"date":           {input: "2024-03-31", expected: NewMonth(2024, 3)},
		"rfc3339":        {input: "2024-03-31T23:10:00Z", expected: NewMonth(2024, 3)},
		"datetime":       {input: "2024-03-31 23:10:00", expected: NewMonth(2024, 3)},
		"slashes":        {input: "2024/12/01", expected: NewMonth(2024, 12)},
		"us date":        {input: "02/29/2024", expected: NewMonth(2024, 2)},
		"month name":     {input: "Jan 2023", expected: NewMonth(2023, 1)},
		"padded":         {input: "  2021-07 ", expected: NewMonth(2021, 7)},
		"empty":          {input: "", err: ErrUnparseableMonth},
		"garbage":        {input: "not a date", err: ErrUnparseableMonth},
		"invalid month":  {input: "2024-13", err: ErrUnparseableMonth},
		"invalid format": {input: "31.03.2024", err: ErrUnparseableMonth},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			m, err := ParseMonth(td.input)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, m)
		})
	}
}

func TestMonthText(t *testing.T) {
	var m Month
	require.Nil(t, m.UnmarshalText([]byte("2020-02-15")))
	assert.Equal(t, NewMonth(2020, 2), m)

	b, err := m.MarshalText()
	require.Nil(t, err)
	assert.Equal(t, "2020-02", string(b))

	assert.ErrorIs(t, m.UnmarshalText([]byte("nope")), ErrUnparseableMonth)
}

func TestMonthSlice(t *testing.T) {
	r := Range(NewMonth(2023, 11), NewMonth(2024, 2))
	assert.Equal(t, MonthSlice{
		NewMonth(2023, 11), NewMonth(2023, 12), NewMonth(2024, 1), NewMonth(2024, 2),
	}, r)
	assert.True(t, r.IsContiguous())
	assert.Equal(t, NewMonth(2023, 11), r.StartMonth())
	assert.Equal(t, NewMonth(2024, 2), r.EndMonth())

	assert.Empty(t, Range(NewMonth(2024, 2), NewMonth(2023, 11)))
	assert.Len(t, Range(NewMonth(2024, 2), NewMonth(2024, 2)), 1)

	unordered := MonthSlice{NewMonth(2024, 5), NewMonth(2025, 1), NewMonth(2024, 12)}
	latest, err := unordered.Latest()
	require.Nil(t, err)
	assert.Equal(t, NewMonth(2025, 1), latest)
	assert.False(t, unordered.IsContiguous())

	_, err = MonthSlice{}.Latest()
	assert.ErrorIs(t, err, ErrEmptyMonthSlice)
	assert.True(t, MonthSlice{}.StartMonth().IsZero())
}

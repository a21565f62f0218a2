package timedataset

import (
	"math"
	"math/rand/v2"
)

// GenerateMonths returns n consecutive months beginning at start.
func GenerateMonths(start Month, n int) MonthSlice {
	if n <= 0 {
		return MonthSlice{}
	}
	return Range(start, start.AddMonths(n-1))
}

type Series []float64

func (s Series) Add(src Series) Series {
	for i := range s {
		s[i] += src[i]
	}
	return s
}

// Clip floors every value at zero
func (s Series) Clip() Series {
	for i, v := range s {
		if v < 0 {
			s[i] = 0
		}
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateSeasonalY returns a yearly cycle with peak amplitude amp in the given peak month.
func GenerateSeasonalY(t MonthSlice, amp float64, peak int) Series {
	y := make([]float64, 0, len(t))
	for _, m := range t {
		phase := 2.0 * math.Pi * float64(int(m.Month)-peak) / 12.0
		y = append(y, amp*math.Cos(phase))
	}
	return Series(y)
}

// GenerateNoise returns gaussian noise with the given standard deviation. Seeding keeps test
// fixtures reproducible.
func GenerateNoise(n int, stddev float64, seed uint64) Series {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, r.NormFloat64()*stddev)
	}
	return Series(y)
}

// Round converts the series into whole incident counts
func (s Series) Round() Series {
	for i, v := range s {
		s[i] = math.Round(v)
	}
	return s
}

package forecast

import (
	"fmt"
	"math"
	"strings"

	"github.com/bfp-analytics/go-firecast/forecast/util"
)

// Transform is a variance stabilizing transform applied to counts before fitting and inverted
// on the forecast mean and bounds.
type Transform string

const (
	TransformIdentity Transform = "identity"
	TransformLog1p    Transform = "log1p"
	TransformSqrt     Transform = "sqrt"
)

// ParseTransform maps a case-insensitive name to a Transform. An empty name is the identity.
func ParseTransform(s string) (Transform, error) {
	switch t := Transform(strings.ToLower(strings.TrimSpace(s))); t {
	case TransformIdentity, TransformLog1p, TransformSqrt:
		return t, nil
	case "", "none":
		return TransformIdentity, nil
	case "log":
		return TransformLog1p, nil
	default:
		return "", fmt.Errorf("%q, %w", s, ErrUnknownTransform)
	}
}

func (t Transform) Validate() error {
	switch t {
	case TransformIdentity, TransformLog1p, TransformSqrt:
		return nil
	default:
		return fmt.Errorf("%q, %w", string(t), ErrUnknownTransform)
	}
}

// Forward is defined for every non-negative count
func (t Transform) Forward(x float64) float64 {
	switch t {
	case TransformLog1p:
		return math.Log1p(x)
	case TransformSqrt:
		return math.Sqrt(x)
	default:
		return x
	}
}

// Inverse undoes Forward. Negative values in square root space map to zero so the inverse
// stays monotonic across the whole real line.
func (t Transform) Inverse(y float64) float64 {
	switch t {
	case TransformLog1p:
		return math.Expm1(y)
	case TransformSqrt:
		if y < 0 {
			return 0
		}
		return y * y
	default:
		return y
	}
}

// ForwardSlice returns a transformed copy of y
func (t Transform) ForwardSlice(y []float64) []float64 {
	out := make([]float64, len(y))
	copy(out, y)
	return util.SliceMap(out, t.Forward)
}

// InverseSlice returns an inverse transformed copy of y
func (t Transform) InverseSlice(y []float64) []float64 {
	out := make([]float64, len(y))
	copy(out, y)
	return util.SliceMap(out, t.Inverse)
}

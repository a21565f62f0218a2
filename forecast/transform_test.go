package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformRoundTrip(t *testing.T) {
	values := []float64{0, 0.2, 1, 3, 17, 1234.5}
	for _, tr := range []Transform{TransformIdentity, TransformLog1p, TransformSqrt} {
		t.Run(string(tr), func(t *testing.T) {
			for _, x := range values {
				assert.InDelta(t, x, tr.Inverse(tr.Forward(x)), 1e-9)
			}
			fwd := tr.ForwardSlice(values)
			assert.InDeltaSlice(t, values, tr.InverseSlice(fwd), 1e-9)
			assert.Equal(t, 3.0, values[3], "slices are copied")
		})
	}
}

func TestTransformValues(t *testing.T) {
	assert.InDelta(t, 0.6931471805599453, TransformLog1p.Forward(1), 1e-12)
	assert.InDelta(t, 2.0, TransformSqrt.Forward(4), 1e-12)
	assert.Equal(t, 0.0, TransformSqrt.Inverse(-1.5))
	assert.InDelta(t, -0.7768698398515702, TransformLog1p.Inverse(-1.5), 1e-12)
	assert.Equal(t, -1.5, TransformIdentity.Inverse(-1.5))
}

func TestParseTransform(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected Transform
		err      error
	}{
		"empty":   {"", TransformIdentity, nil},
		"log1p":   {"LOG1P", TransformLog1p, nil},
		"log":     {"log", TransformLog1p, nil},
		"sqrt":    {" sqrt ", TransformSqrt, nil},
		"unknown": {"boxcox", "", ErrUnknownTransform},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			tr, err := ParseTransform(td.input)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, tr)
		})
	}
	assert.ErrorIs(t, Transform("cube").Validate(), ErrUnknownTransform)
}

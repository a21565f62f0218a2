package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRisk(t *testing.T) {
	testData := map[string]struct {
		predicted float64
		upper     float64
		labels    RiskLabels
		expected  Risk
	}{
		"high elevated":   {1.2, 3.5, LabelsColab, Risk{RiskHigh, "Elevated Risk"}},
		"very low none":   {0.1, 1.0, LabelsColab, Risk{RiskVeryLow, ""}},
		"very low normal": {0.1, 1.0, LabelsEnhanced, Risk{RiskVeryLow, "normal"}},
		"boundary high":   {1.0, 3.0, LabelsEnhanced, Risk{RiskHigh, "critical"}},
		"medium watch":    {0.5, 2.0, LabelsEnhanced, Risk{RiskMedium, "monitor"}},
		"low moderate":    {0.2, 1.99, LabelsColab, Risk{RiskLowModerate, ""}},
		"just below":      {0.1999, 2.5, LabelsColab, Risk{RiskVeryLow, "Watchlist"}},
		"medium upper":    {0.99, 2.99, LabelsColab, Risk{RiskMedium, "Watchlist"}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, ClassifyRisk(td.predicted, td.upper, td.labels))
		})
	}
}

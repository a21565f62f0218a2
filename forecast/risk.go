package forecast

const (
	RiskHigh         = "High"
	RiskMedium       = "Medium"
	RiskLowModerate  = "Low-Moderate"
	RiskVeryLow      = "Very Low"
	thresholdHigh    = 1.0
	thresholdMedium  = 0.5
	thresholdLow     = 0.2
	thresholdElevate = 3.0
	thresholdWatch   = 2.0
)

// RiskLabels is the vocabulary used for the risk flag. An empty label is serialized as null.
type RiskLabels struct {
	Elevated  string `json:"elevated" yaml:"elevated"`
	Watchlist string `json:"watchlist" yaml:"watchlist"`
	None      string `json:"none" yaml:"none"`
}

var (
	LabelsColab = RiskLabels{
		Elevated:  "Elevated Risk",
		Watchlist: "Watchlist",
	}
	LabelsEnhanced = RiskLabels{
		Elevated:  "critical",
		Watchlist: "monitor",
		None:      "normal",
	}
)

// Risk is the categorical assessment of a single forecast point
type Risk struct {
	Level string
	Flag  string
}

// ClassifyRisk maps the predicted cases to a level and the upper bound to a flag.
func ClassifyRisk(predicted, upper float64, labels RiskLabels) Risk {
	var r Risk
	switch {
	case predicted >= thresholdHigh:
		r.Level = RiskHigh
	case predicted >= thresholdMedium:
		r.Level = RiskMedium
	case predicted >= thresholdLow:
		r.Level = RiskLowModerate
	default:
		r.Level = RiskVeryLow
	}

	switch {
	case upper >= thresholdElevate:
		r.Flag = labels.Elevated
	case upper >= thresholdWatch:
		r.Flag = labels.Watchlist
	default:
		r.Flag = labels.None
	}
	return r
}
